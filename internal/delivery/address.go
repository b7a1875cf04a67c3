package delivery

import (
	"regexp"
)

var (
	phoneJunk    = regexp.MustCompile(`[^\d+]`)
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone strips formatting characters, keeping digits and the
// plus sign.
func NormalizePhone(phone string) string {
	return phoneJunk.ReplaceAllString(phone, "")
}

// ValidPhone reports whether the phone number, after normalization, is
// an E.164 number usable for SMS.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// ValidEmail reports whether the address looks like a deliverable
// email. Intentionally loose; the provider does the real validation.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
