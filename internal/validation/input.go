package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxProjectTitleLength       = 200
	MaxProjectDescriptionLength = 2000
	MaxLocationLength           = 200
	MaxNameLength               = 100
	MaxMessageLength            = 5000
	MaxNotesLength              = 10000
	MaxUtilizationDescription   = 500
	MaxRejectionReasonLength    = 1000
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("некорректный формат email")
	}
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidatePhone проверяет телефон, если он указан.
func ValidatePhone(phone *string) error {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}

// ValidateName проверяет имя пользователя или отправителя обращения.
func ValidateName(name string) error {
	if err := ValidateNonEmpty("имя", name); err != nil {
		return err
	}
	return ValidateLength("имя", strings.TrimSpace(name), 0, MaxNameLength)
}

// ValidateProjectTitle проверяет заголовок проекта.
func ValidateProjectTitle(title string) error {
	if err := ValidateNonEmpty("заголовок проекта", title); err != nil {
		return err
	}
	return ValidateLength("заголовок проекта", strings.TrimSpace(title), 0, MaxProjectTitleLength)
}

// ValidateProjectDescription проверяет описание проекта.
func ValidateProjectDescription(description string) error {
	if err := ValidateNonEmpty("описание проекта", description); err != nil {
		return err
	}
	return ValidateLength("описание проекта", strings.TrimSpace(description), 0, MaxProjectDescriptionLength)
}

// ValidateLocation проверяет местоположение проекта.
func ValidateLocation(location string) error {
	if err := ValidateNonEmpty("местоположение", location); err != nil {
		return err
	}
	return ValidateLength("местоположение", strings.TrimSpace(location), 0, MaxLocationLength)
}

// ValidateDeadline требует дату в будущем.
func ValidateDeadline(deadline, now time.Time) error {
	if deadline.IsZero() {
		return fmt.Errorf("срок проекта обязателен")
	}
	if !deadline.After(now) {
		return fmt.Errorf("срок проекта должен быть в будущем")
	}
	return nil
}

// ParseDate принимает RFC3339 и короткий формат YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("некорректный формат даты: %q", value)
}

// ValidateMessageContent проверяет текст обращения.
func ValidateMessageContent(content string) error {
	if err := ValidateNonEmpty("сообщение", content); err != nil {
		return err
	}
	return ValidateLength("сообщение", strings.TrimSpace(content), 0, MaxMessageLength)
}

// ValidateRejectionReason требует причину отказа.
func ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина отказа обязательна")
	}
	return ValidateLength("причина отказа", reason, 0, MaxRejectionReasonLength)
}
