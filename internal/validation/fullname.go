package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateFullname validates the sign-up full name: 2 to 50 characters,
// counted as runes so multibyte names are not penalized.
func ValidateFullname(fullname string) error {
	trimmed := strings.TrimSpace(fullname)

	length := utf8.RuneCountInString(trimmed)
	if length < 2 {
		return errors.New("full name must be at least 2 characters")
	}

	if length > 50 {
		return errors.New("full name is too long (max 50 characters)")
	}

	return nil
}
