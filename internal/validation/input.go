package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// Константы валидации
const (
	MaxNotesLength        = 1000
	MaxCancelReasonLength = 500
	MaxRejectReasonLength = 500
	MaxBankNameLength     = 100
	MinAccountLength      = 6
	MaxAccountLength      = 20
)

var accountPattern = regexp.MustCompile(`^[0-9]+$`)

func invalid(format string, args ...interface{}) error {
	return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return invalid("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return invalid("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// NormalizeText обрезает пробелы и проверяет свободный текст: длину и отсутствие управляющих символов.
func NormalizeText(fieldName, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return "", invalid("%s содержит недопустимые символы", fieldName)
		}
	}
	if err := ValidateLength(fieldName, value, 0, max); err != nil {
		return "", err
	}
	return value, nil
}

// ValidateBeneficiary проверяет реквизиты для вывода средств.
func ValidateBeneficiary(account, bank string) error {
	account = strings.TrimSpace(account)
	if !accountPattern.MatchString(account) {
		return invalid("номер счёта должен содержать только цифры")
	}
	if err := ValidateLength("номер счёта", account, MinAccountLength, MaxAccountLength); err != nil {
		return err
	}
	if strings.TrimSpace(bank) == "" {
		return invalid("банк обязателен")
	}
	return ValidateLength("банк", strings.TrimSpace(bank), 1, MaxBankNameLength)
}
