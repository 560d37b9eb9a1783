package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/repository/common"
)

type ContactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts (name, email, phone, query_type, message, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`
	if err := r.db.GetContext(ctx, c, query, c.Name, c.Email, c.Phone, c.QueryType, c.Message, c.UserID); err != nil {
		return fmt.Errorf("contact repository: create %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return common.GetByID[models.Contact](ctx, r.db, "contacts", id, apperror.ErrContactNotFound)
}

func (r *ContactRepository) ListAll(ctx context.Context) ([]models.Contact, error) {
	contacts := make([]models.Contact, 0)
	if err := r.db.SelectContext(ctx, &contacts, `SELECT * FROM contacts ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("contact repository: list %w", err)
	}
	return contacts, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, c *models.Contact) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET status = $2, resolved_at = $3 WHERE id = $1`, c.ID, c.Status, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("contact repository: update status %w", err)
	}
	return common.ExpectAffected(res, apperror.ErrContactNotFound)
}
