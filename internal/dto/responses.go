package dto

import (
	"time"

	"github.com/ignatzorin/ruralfund-backend/internal/models"
)

// ErrorResponse возвращается при любой ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProjectResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Project *models.Project `json:"project"`
}

type InvestmentResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Investment *models.Investment `json:"investment"`
}

type ContactResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Contact *models.Contact `json:"contact"`
}

// LoginResponse содержит токен и профиль. Для администратора профиля нет.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      interface{} `json:"user,omitempty"`
}
