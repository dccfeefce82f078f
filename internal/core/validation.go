package core

// validation.go provides the contact predicates used during normalization.
//
// Both predicates are total: they accept any Value, return false for
// anything that is not text, and never fail.

import "regexp"

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// IsValidEmail reports whether v is a text value shaped like local@host.tld.
func IsValidEmail(v Value) bool {
	if !v.IsString() {
		return false
	}
	return ValidEmail(v.Text)
}

// IsValidPhone reports whether v is a text value made of an optional
// leading '+' followed by 10 to 15 digits.
func IsValidPhone(v Value) bool {
	if !v.IsString() {
		return false
	}
	return ValidPhone(v.Text)
}

// ValidEmail is the string form of IsValidEmail.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidPhone is the string form of IsValidPhone.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}
