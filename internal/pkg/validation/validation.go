package validation

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account names: lowercase alphanumerics, dot, dash, underscore, 2-64 chars.
var accountRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,63}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with at least one letter,
// one number, and one special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// IsValidAccount reports whether s is a well-formed ledger account name.
func IsValidAccount(s string) bool {
	return accountRe.MatchString(s)
}
