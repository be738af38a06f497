package services_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbilling/backend/internal/services"
)

func TestTemplateStoreDefaults(t *testing.T) {
	store := services.NewTemplateStore(filepath.Join(t.TempDir(), "missing.json"))

	keys := store.Keys()
	assert.Contains(t, keys, services.TemplateInvoiceCreated)
	assert.Contains(t, keys, services.TemplateDueDateReminder)
	assert.Contains(t, keys, services.TemplatePaymentReceived)
	assert.Contains(t, keys, services.TemplateServiceSuspension)
	assert.Contains(t, keys, services.TemplateServiceRestored)
	assert.Contains(t, keys, services.TemplateInstallationJob)

	for _, key := range keys {
		assert.True(t, store.IsEnabled(key), "defaults ship enabled: %s", key)
	}

	tmpl, ok := store.Get(services.TemplateInvoiceCreated)
	require.True(t, ok)
	assert.Contains(t, tmpl.Template, "{invoice_number}")
	assert.Contains(t, tmpl.Template, "{amount}")
}

func TestTemplateStoreFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	saved := map[string]services.Template{
		services.TemplateInvoiceCreated: {
			Title:    "Custom",
			Template: "Halo {name}",
			Enabled:  false,
		},
	}
	data, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := services.NewTemplateStore(path)

	tmpl, ok := store.Get(services.TemplateInvoiceCreated)
	require.True(t, ok)
	assert.Equal(t, "Custom", tmpl.Title)
	assert.False(t, tmpl.Enabled)

	// Keys absent from the file keep their defaults.
	assert.True(t, store.IsEnabled(services.TemplatePaymentReceived))
}

func TestTemplateStoreCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := services.NewTemplateStore(path)

	assert.True(t, store.IsEnabled(services.TemplateInvoiceCreated))
}

func TestTemplateStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.json")
	store := services.NewTemplateStore(path)

	err := store.Update(services.TemplateDueDateReminder, services.Template{
		Title:    "Reminder",
		Template: "Bayar {invoice_number} sebelum {due_date}",
		Enabled:  true,
	})
	require.NoError(t, err)

	reloaded := services.NewTemplateStore(path)
	tmpl, ok := reloaded.Get(services.TemplateDueDateReminder)
	require.True(t, ok)
	assert.Equal(t, "Bayar {invoice_number} sebelum {due_date}", tmpl.Template)
}

func TestTemplateStoreSetEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	store := services.NewTemplateStore(path)

	require.NoError(t, store.SetEnabled(services.TemplateServiceSuspension, false))
	assert.False(t, store.IsEnabled(services.TemplateServiceSuspension))

	tmpl, _ := store.Get(services.TemplateServiceSuspension)
	assert.NotEmpty(t, tmpl.Template, "body untouched by the toggle")

	reloaded := services.NewTemplateStore(path)
	assert.False(t, reloaded.IsEnabled(services.TemplateServiceSuspension))

	err := store.SetEnabled("no_such_template", true)
	assert.Error(t, err)
}
