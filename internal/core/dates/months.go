package dates

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/refund-checklist/internal/core/textnorm"
)

// monthNames lists Spanish month names and the abbreviations seen on
// Colombian certificates. Lookup compares the first three letters.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"enero", time.January}, {"ene", time.January},
	{"febrero", time.February}, {"feb", time.February},
	{"marzo", time.March}, {"mar", time.March}, {"mzo", time.March},
	{"abril", time.April}, {"abr", time.April},
	{"mayo", time.May}, {"may", time.May},
	{"junio", time.June}, {"jun", time.June},
	{"julio", time.July}, {"jul", time.July},
	{"agosto", time.August}, {"ago", time.August}, {"agto", time.August},
	{"septiembre", time.September}, {"setiembre", time.September},
	{"sep", time.September}, {"sept", time.September}, {"set", time.September},
	{"octubre", time.October}, {"oct", time.October},
	{"noviembre", time.November}, {"nov", time.November},
	{"diciembre", time.December}, {"dic", time.December}, {"dbre", time.December},
}

// lookupMonth resolves a month word by its first three letters.
func lookupMonth(word string) (time.Month, bool) {
	w := textnorm.StripAccents(strings.ToLower(strings.TrimSpace(word)))
	if len(w) < 3 {
		return 0, false
	}
	prefix := w[:3]
	for _, m := range monthNames {
		if m.name[:3] == prefix {
			return m.month, true
		}
	}
	return 0, false
}
