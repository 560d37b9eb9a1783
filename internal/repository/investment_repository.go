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

type InvestmentRepository struct {
	db *sqlx.DB
}

func NewInvestmentRepository(db *sqlx.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	query := `
		INSERT INTO investments (amount, project_id, investor_id, account_number, bank_name, bank_branch,
			ifsc_code, account_holder_name, pan_number, aadhar_number, investment_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *
	`
	if err := r.db.GetContext(ctx, inv, query,
		inv.Amount, inv.ProjectID, inv.InvestorID,
		inv.AccountNumber, inv.BankName, inv.BankBranch, inv.IFSCCode, inv.AccountHolderName,
		inv.PANNumber, inv.AadharNumber, inv.InvestmentReason,
	); err != nil {
		return fmt.Errorf("investment repository: create %w", err)
	}
	return nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	return common.GetByID[models.Investment](ctx, r.db, "investments", id, apperror.ErrInvestmentNotFound)
}

// Review блокирует инвестицию, затем её проект, применяет fn и сохраняет обе записи
// в одной транзакции. Ошибка fn откатывает всё.
func (r *InvestmentRepository) Review(
	ctx context.Context,
	id uuid.UUID,
	fn func(inv *models.Investment, project *models.Project) error,
) (*models.Investment, *models.Project, error) {
	var (
		inv     *models.Investment
		project *models.Project
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		inv, err = common.LockByID[models.Investment](ctx, tx, "investments", id, apperror.ErrInvestmentNotFound)
		if err != nil {
			return err
		}
		project, err = common.LockByID[models.Project](ctx, tx, "projects", inv.ProjectID, apperror.ErrProjectNotFound)
		if err != nil {
			return err
		}

		if err := fn(inv, project); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &inv.UpdatedAt, `
			UPDATE investments SET status = $2, rejection_reason = $3, admin_approved_at = $4,
				admin_approved_by = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, inv.ID, inv.Status, inv.RejectionReason, inv.AdminApprovedAt, inv.AdminApprovedBy); err != nil {
			return fmt.Errorf("investment repository: review update investment %w", err)
		}

		if err := tx.GetContext(ctx, &project.UpdatedAt, `
			UPDATE projects SET amount_funded = $2, status = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`, project.ID, project.AmountFunded, project.Status); err != nil {
			return fmt.Errorf("investment repository: review update project %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return inv, project, nil
}

const investmentViewSelect = `
	SELECT i.*,
		p.title AS "project.title", p.amount AS "project.amount", p.location AS "project.location",
		p.amount_funded AS "project.amount_funded", p.status AS "project.status",
		u.name AS "investor.name", u.email AS "investor.email"
	FROM investments i
	JOIN projects p ON p.id = i.project_id
	JOIN users u ON u.id = i.investor_id
`

func (r *InvestmentRepository) ListAll(ctx context.Context) ([]models.InvestmentView, error) {
	return r.listViews(ctx, "list all", investmentViewSelect+` ORDER BY i.created_at DESC`)
}

func (r *InvestmentRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.InvestmentView, error) {
	return r.listViews(ctx, "list by investor",
		investmentViewSelect+` WHERE i.investor_id = $1 ORDER BY i.created_at DESC`, investorID)
}

func (r *InvestmentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.InvestmentView, error) {
	return r.listViews(ctx, "list by project",
		investmentViewSelect+` WHERE i.project_id = $1 ORDER BY i.created_at DESC`, projectID)
}

func (r *InvestmentRepository) listViews(ctx context.Context, op, query string, args ...interface{}) ([]models.InvestmentView, error) {
	views := make([]models.InvestmentView, 0)
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("investment repository: %s %w", op, err)
	}
	return views, nil
}
