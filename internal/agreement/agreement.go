// internal/agreement/agreement.go
package agreement

import (
	"fmt"
	"strings"
	"time"
)

// DatePlaceholder is replaced by the song's registration date.
const DatePlaceholder = "[DATE]"

// DefaultTemplate is used whenever no template is stored.
const DefaultTemplate = `
EXCLUSIVE PUBLISHING AGREEMENT

This Agreement is made on this day, [DATE], between Sap Media Publishing Ltd ("Publisher") located at 5830 E 2nd St, Ste 7000, 29084 Casper, WY 82609, and the undersigned writer ("Writer").

1. GRANT OF RIGHTS: By agreeing to this contract, Writer irrevocably grants to Publisher the exclusive right to collect all revenue on their behalf for the musical composition(s) (the "Composition") listed herein. This includes 100% of the worldwide copyright and all administration rights.

2. TERM: The term of this agreement shall be for the life of the copyright of the Composition(s) unless terminated earlier by mutual written consent.

3. ROYALTIES: Publisher agrees to pay Writer royalties based on the split percentages defined in the attached song registration. Payments shall be made quarterly within 45 days after the end of each calendar quarter, based on revenue collected.

4. ADMINISTRATION: Publisher shall have the exclusive right to administer and exploit the Composition(s), to print, publish, sell, use and license the performance of the Composition(s) throughout the world, and to collect all income generated.

By signing below, the Writer acknowledges they have read, understood, and agreed to the terms and conditions of this Exclusive Publishing Agreement.
`

// Render substitutes the first [DATE] in template with the registration date
// in M/D/YYYY form.
func Render(template, registrationDate string) string {
	return strings.Replace(template, DatePlaceholder, FormatLocaleDate(registrationDate), 1)
}

// FormatLocaleDate formats a YYYY-MM-DD (or RFC 3339) date as M/D/YYYY using
// the calendar date as written, with no timezone shift. Input that does not
// parse is returned unchanged.
func FormatLocaleDate(date string) string {
	t, ok := parseDate(date)
	if !ok {
		return date
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
