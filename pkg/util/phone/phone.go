// Package phone normalizes candidate phone numbers to E.164 before they are
// snapshotted onto bookings or handed to the SMS provider.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers written without a country prefix.
const DefaultRegion = "US"

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses raw and returns it in E.164 form ("+14155550123").
// Numbers without a leading + are interpreted in region (DefaultRegion when
// empty).
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeOrEmpty is Normalize for optional fields: unparseable input maps
// to "" instead of an error.
func NormalizeOrEmpty(raw, region string) string {
	out, err := Normalize(raw, region)
	if err != nil {
		return ""
	}
	return out
}
