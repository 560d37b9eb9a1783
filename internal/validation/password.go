package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

// ValidatePassword проверяет пароль: минимум 8 символов, заглавная и строчная буква, цифра.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "заглавную букву")
	}
	if !hasLower {
		missing = append(missing, "строчную букву")
	}
	if !hasNumber {
		missing = append(missing, "цифру")
	}
	if len(missing) > 0 {
		return fmt.Errorf("пароль должен содержать %s", strings.Join(missing, ", "))
	}

	return nil
}
