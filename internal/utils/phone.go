package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhoneNumber normalizes a phone number to E.164 format.
// Assumes Indian phone numbers when no country code is provided.
func NormalizePhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)

	num, err := phonenumbers.Parse(phone, "IN")
	if err != nil {
		return "", err
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", phonenumbers.ErrNotANumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
