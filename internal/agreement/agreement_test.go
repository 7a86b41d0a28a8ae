// internal/agreement/agreement_test.go
package agreement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderReplacesFirstPlaceholderOnly(t *testing.T) {
	out := Render("Signed [DATE]; countersigned [DATE]", "2024-03-05")
	assert.Equal(t, "Signed 3/5/2024; countersigned [DATE]", out)
}

func TestRenderDefaultTemplate(t *testing.T) {
	out := Render(DefaultTemplate, "2023-12-31")
	assert.Contains(t, out, "made on this day, 12/31/2023, between Sap Media Publishing Ltd")
	assert.NotContains(t, out, DatePlaceholder)
}

func TestRenderWithoutPlaceholder(t *testing.T) {
	assert.Equal(t, "no date here", Render("no date here", "2024-01-01"))
}

func TestFormatLocaleDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-09":           "1/9/2024",
		"1999-11-30":           "11/30/1999",
		"2024-07-04T23:30:00Z": "7/4/2024",
		"2024-07-04 10:00":     "7/4/2024",
		"not a date":           "not a date",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatLocaleDate(in), in)
	}
}

func TestDefaultTemplateHasOnePlaceholder(t *testing.T) {
	assert.Equal(t, 1, strings.Count(DefaultTemplate, DatePlaceholder))
}
