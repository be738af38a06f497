package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netbilling/backend/internal/services"
)

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading zero replaced", "081234567890", "6281234567890"},
		{"already international", "6281234567890", "6281234567890"},
		{"bare local number", "81234567890", "6281234567890"},
		{"plus and separators stripped", "+62 812-3456-7890", "6281234567890"},
		{"spaces and dots stripped", "0812.3456 7890", "6281234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.FormatPhoneNumber(tt.input))
		})
	}
}

func TestFormatPhoneNumberIdempotent(t *testing.T) {
	once := services.FormatPhoneNumber("081234567890")
	twice := services.FormatPhoneNumber(once)
	assert.Equal(t, once, twice)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "100.000", services.FormatCurrency(100000))
	assert.Equal(t, "1.500.000", services.FormatCurrency(1500000))
	assert.Equal(t, "500", services.FormatCurrency(500))
	assert.Equal(t, "0", services.FormatCurrency(0))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "15-06-2025", services.FormatDate(d))
}

func TestReplaceTemplateVariables(t *testing.T) {
	t.Run("substitutes all occurrences", func(t *testing.T) {
		got := services.ReplaceTemplateVariables(
			"Halo {name}, tagihan {name} sebesar {amount}",
			map[string]string{"name": "Budi", "amount": "100.000"},
		)
		assert.Equal(t, "Halo Budi, tagihan Budi sebesar 100.000", got)
	})

	t.Run("empty value substitutes empty string", func(t *testing.T) {
		got := services.ReplaceTemplateVariables(
			"Halo {name}!",
			map[string]string{"name": ""},
		)
		assert.Equal(t, "Halo !", got)
	})

	t.Run("absent key left verbatim", func(t *testing.T) {
		got := services.ReplaceTemplateVariables(
			"Halo {name}, paket {package_name}",
			map[string]string{"name": "Budi"},
		)
		assert.Equal(t, "Halo Budi, paket {package_name}", got)
	})

	t.Run("no placeholders is a no-op", func(t *testing.T) {
		got := services.ReplaceTemplateVariables("plain text", map[string]string{"name": "Budi"})
		assert.Equal(t, "plain text", got)
	})
}
