package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/validation"
)

type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	ListAll(ctx context.Context) ([]models.Contact, error)
	UpdateStatus(ctx context.Context, c *models.Contact) error
}

type SubmitContactInput struct {
	Name      string
	Email     string
	Phone     *string
	QueryType string
	Message   string
	UserID    *uuid.UUID
}

type ContactService struct {
	repo ContactRepository
	now  func() time.Time
}

func NewContactService(repo ContactRepository) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

func (s *ContactService) Submit(ctx context.Context, in SubmitContactInput) (*models.Contact, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if strings.TrimSpace(in.QueryType) == "" {
		return nil, apperror.Validation("тип обращения обязателен")
	}
	queryType, err := valueobject.NewQueryType(in.QueryType)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateMessageContent(in.Message); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	contact := &models.Contact{
		Name:      strings.TrimSpace(in.Name),
		Email:     validation.NormalizeEmail(in.Email),
		Phone:     trimmedOrNil(in.Phone),
		QueryType: queryType,
		Message:   strings.TrimSpace(in.Message),
		Status:    valueobject.ContactStatusNew,
		UserID:    in.UserID,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) ListAll(ctx context.Context) ([]models.Contact, error) {
	return s.repo.ListAll(ctx)
}

// SetStatus меняет статус обращения; resolved проставляет время закрытия.
func (s *ContactService) SetStatus(ctx context.Context, id uuid.UUID, raw string) (*models.Contact, error) {
	status, err := valueobject.NewContactStatus(raw)
	if err != nil {
		return nil, err
	}

	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contact.SetStatus(status, s.now())
	if err := s.repo.UpdateStatus(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}
