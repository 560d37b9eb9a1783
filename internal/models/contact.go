package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
)

// Contact представляет обращение через форму обратной связи.
type Contact struct {
	ID         uuid.UUID                 `db:"id" json:"id"`
	Name       string                    `db:"name" json:"name"`
	Email      string                    `db:"email" json:"email"`
	Phone      *string                   `db:"phone" json:"phone,omitempty"`
	QueryType  valueobject.QueryType     `db:"query_type" json:"queryType"`
	Message    string                    `db:"message" json:"message"`
	Status     valueobject.ContactStatus `db:"status" json:"status"`
	UserID     *uuid.UUID                `db:"user_id" json:"userId,omitempty"`
	CreatedAt  time.Time                 `db:"created_at" json:"createdAt"`
	ResolvedAt *time.Time                `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// SetStatus меняет статус; переход в resolved проставляет время закрытия.
func (c *Contact) SetStatus(status valueobject.ContactStatus, now time.Time) {
	c.Status = status
	if status == valueobject.ContactStatusResolved {
		c.ResolvedAt = &now
		return
	}
	c.ResolvedAt = nil
}
