package validation

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone returns the E.164 form of raw when it parses as a valid number
// for defaultRegion, and raw unchanged otherwise.
func NormalizePhone(raw, defaultRegion string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
