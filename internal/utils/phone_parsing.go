package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// parseBrazilianPhone parses a stored phone value, assuming Brazil when the
// number carries no country code.
func parseBrazilianPhone(raw string) (*phonenumbers.PhoneNumber, bool) {
	clean := strings.TrimSpace(raw)
	if DigitsOnly(clean) == "" {
		return nil, false
	}
	if strings.HasPrefix(clean, "55") && len(DigitsOnly(clean)) > phoneDigits {
		clean = "+" + clean
	}

	num, err := phonenumbers.Parse(clean, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return nil, false
	}
	return num, true
}

// FormatPhoneForDisplay renders a stored phone for the dashboard. Brazilian
// numbers use the national format, foreign ones the international format.
// Values that do not parse fall back to the input mask.
func FormatPhoneForDisplay(raw string) string {
	num, ok := parseBrazilianPhone(raw)
	if !ok {
		if masked := MaskPhone(raw); masked != "" {
			return masked
		}
		return strings.TrimSpace(raw)
	}

	if num.GetCountryCode() == 55 {
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// PhoneE164 returns the E.164 form of a stored phone, if it is a valid number
func PhoneE164(raw string) (string, bool) {
	num, ok := parseBrazilianPhone(raw)
	if !ok {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}
