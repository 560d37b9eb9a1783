package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	panRegex     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscRegex    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	aadharRegex  = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	accountRegex = regexp.MustCompile(`^[0-9]{6,20}$`)
)

// NormalizeKYC убирает пробелы и приводит к верхнему регистру.
func NormalizeKYC(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}

// ValidatePAN проверяет номер PAN (ABCDE1234F).
func ValidatePAN(pan string) error {
	if !panRegex.MatchString(NormalizeKYC(pan)) {
		return fmt.Errorf("некорректный номер PAN")
	}
	return nil
}

// ValidateIFSC проверяет код банка IFSC (SBIN0001234).
func ValidateIFSC(code string) error {
	if !ifscRegex.MatchString(NormalizeKYC(code)) {
		return fmt.Errorf("некорректный код IFSC")
	}
	return nil
}

// ValidateAadhar проверяет 12-значный номер Aadhaar.
func ValidateAadhar(number string) error {
	if !aadharRegex.MatchString(NormalizeKYC(number)) {
		return fmt.Errorf("некорректный номер Aadhaar")
	}
	return nil
}

// ValidateAccountNumber проверяет номер банковского счёта.
func ValidateAccountNumber(number string) error {
	if !accountRegex.MatchString(NormalizeKYC(number)) {
		return fmt.Errorf("некорректный номер счёта")
	}
	return nil
}
