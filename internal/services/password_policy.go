package services

import (
	"errors"
	"fmt"
	"unicode"
)

const minPasswordLength = 8

var ErrWeakPassword = errors.New("weak password")

// ValidatePasswordStrength wraps ErrWeakPassword with the first rule the
// password breaks so command line callers can show it as is.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		hasUpper = hasUpper || unicode.IsUpper(char)
		hasLower = hasLower || unicode.IsLower(char)
		hasDigit = hasDigit || unicode.IsDigit(char)
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: needs an upper case letter", ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: needs a lower case letter", ErrWeakPassword)
	case !hasDigit:
		return fmt.Errorf("%w: needs a digit", ErrWeakPassword)
	}
	return nil
}
