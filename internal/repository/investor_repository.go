package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/repository/common"
)

type InvestorRepository struct {
	db *sqlx.DB
}

func NewInvestorRepository(db *sqlx.DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

func (r *InvestorRepository) Create(ctx context.Context, investor *models.Investor) error {
	query := `
		INSERT INTO investors (email, password_hash, occupation)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, investor.Email, investor.PasswordHash, investor.Occupation).
		Scan(&investor.ID, &investor.CreatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return apperror.ErrEmailTaken
		}
		return fmt.Errorf("investor repository: create %w", err)
	}
	return nil
}

func (r *InvestorRepository) GetByEmail(ctx context.Context, email string) (*models.Investor, error) {
	return common.GetByField[models.Investor](ctx, r.db, "investors", "email", email, apperror.ErrUserNotFound)
}
