package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// notFoundOr отдаёт notFound для sql.ErrNoRows, иначе оборачивает err с префиксом операции.
func notFoundOr(err, notFound error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s %w", op, err)
}
