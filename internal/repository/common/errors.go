package common

import (
	"errors"

	"github.com/lib/pq"
)

// SQLSTATE нарушения уникального индекса
const uniqueViolation = "23505"

// IsUniqueViolation сообщает, что вставка упёрлась в уникальный индекс.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
