package services

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.Indonesian)

// FormatCurrency renders an amount with Indonesian digit grouping,
// e.g. 100000 -> "100.000".
func FormatCurrency(amount float64) string {
	return currencyPrinter.Sprintf("%d", int64(amount))
}

// FormatDate renders a date the way customers expect it in messages.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatPhoneNumber normalizes a phone number to international format with
// country code 62: strip non-digits, replace a leading 0, prefix 62 if
// missing. Idempotent: a number already starting with 62 passes through.
func FormatPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	if strings.HasPrefix(cleaned, "0") {
		return "62" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "62") {
		return "62" + cleaned
	}
	return cleaned
}

// ReplaceTemplateVariables substitutes every {key} occurrence in template
// with the matching value; empty values substitute an empty string. Keys
// absent from data are left verbatim — callers must supply every
// placeholder the template references.
func ReplaceTemplateVariables(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}
