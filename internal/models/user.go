package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает владельца проекта или инвестора, вошедшего по email.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Occupation   *string   `db:"occupation" json:"occupation,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Investor хранит отдельную учётную запись инвестора без профиля.
type Investor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Occupation   string    `db:"occupation" json:"occupation"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
