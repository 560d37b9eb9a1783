package valueobject

import (
	"math"
	"strconv"
	"strings"

	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// MaxAmount соответствует колонкам NUMERIC(14,2): не больше 12 знаков до запятой.
const MaxAmount = 999_999_999_999.99

// NewRequestedAmount проверяет запрошенную проектом сумму.
func NewRequestedAmount(amount float64) (float64, error) {
	if !isFinite(amount) || amount <= 0 {
		return 0, apperror.Validation("сумма проекта должна быть больше нуля")
	}
	if err := checkStoredAmount(amount, "сумма проекта"); err != nil {
		return 0, err
	}
	return amount, nil
}

// NewInvestmentAmount проверяет сумму инвестиции: минимум 1.
func NewInvestmentAmount(amount float64) (float64, error) {
	if !isFinite(amount) || amount < 1 {
		return 0, apperror.Validation("сумма инвестиции должна быть не меньше 1")
	}
	if err := checkStoredAmount(amount, "сумма инвестиции"); err != nil {
		return 0, err
	}
	return amount, nil
}

// NewUtilizedAmount проверяет сумму строки отчёта о расходах. Строки хранятся
// в JSONB как есть, поэтому точность не ограничивается.
func NewUtilizedAmount(amount float64) (float64, error) {
	if !isFinite(amount) || amount < 0 {
		return 0, apperror.Validation("сумма расхода не может быть отрицательной")
	}
	return amount, nil
}

func checkStoredAmount(amount float64, field string) error {
	if amount > MaxAmount {
		return apperror.Validation(field + " слишком большая")
	}
	digits := strconv.FormatFloat(amount, 'f', -1, 64)
	if dot := strings.IndexByte(digits, '.'); dot >= 0 && len(digits)-dot-1 > 2 {
		return apperror.Validation(field + " может содержать не больше двух знаков после запятой")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
