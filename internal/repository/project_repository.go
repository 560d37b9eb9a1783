package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/repository/common"
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create сохраняет новый проект и дочитывает значения по умолчанию.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (title, description, amount, location, deadline, status, priority,
			engineer, document_path, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *
	`
	if err := r.db.GetContext(ctx, p, query,
		p.Title, p.Description, p.Amount, p.Location, p.Deadline, p.Status, p.Priority,
		p.Engineer, p.DocumentPath, p.OwnerID,
	); err != nil {
		return fmt.Errorf("project repository: create %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return common.GetByID[models.Project](ctx, r.db, "projects", id, apperror.ErrProjectNotFound)
}

// Update перезаписывает поля, которые владелец может менять после создания.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects SET title = $2, description = $3, amount = $4, location = $5, deadline = $6,
			priority = $7, engineer = $8, document_path = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID, p.Title, p.Description, p.Amount, p.Location, p.Deadline,
		p.Priority, p.Engineer, p.DocumentPath,
	); err != nil {
		return notFoundOr(err, apperror.ErrProjectNotFound, "project repository: update")
	}
	return nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ProjectStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("project repository: update status %w", err)
	}
	return common.ExpectAffected(res, apperror.ErrProjectNotFound)
}

func (r *ProjectRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET fund_utilization_notes = $2, updated_at = NOW() WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("project repository: update notes %w", err)
	}
	return common.ExpectAffected(res, apperror.ErrProjectNotFound)
}

// UpdateFundDetails заменяет список расходов целиком.
func (r *ProjectRepository) UpdateFundDetails(ctx context.Context, id uuid.UUID, details models.FundUtilizationDetails) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET fund_utilization_details = $2, updated_at = NOW() WHERE id = $1`, id, details)
	if err != nil {
		return fmt.Errorf("project repository: update fund details %w", err)
	}
	return common.ExpectAffected(res, apperror.ErrProjectNotFound)
}

// SaveReview сохраняет решение администратора.
func (r *ProjectRepository) SaveReview(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects SET admin_status = $2, rejection_reason = $3, admin_reviewed_at = $4,
			admin_reviewed_by = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID, p.AdminStatus, p.RejectionReason, p.AdminReviewedAt, p.AdminReviewedBy,
	); err != nil {
		return notFoundOr(err, apperror.ErrProjectNotFound, "project repository: save review")
	}
	return nil
}

// Delete удаляет проект; инвестиции удаляются каскадно.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("project repository: delete %w", err)
	}
	return common.ExpectAffected(res, apperror.ErrProjectNotFound)
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]models.Project, error) {
	return r.list(ctx, "list all", `SELECT * FROM projects ORDER BY created_at DESC`)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return r.list(ctx, "list by owner",
		`SELECT * FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListApproved возвращает одобренные администратором проекты независимо от финансирования.
func (r *ProjectRepository) ListApproved(ctx context.Context) ([]models.Project, error) {
	return r.list(ctx, "list approved",
		`SELECT * FROM projects WHERE admin_status = $1 ORDER BY created_at DESC`,
		valueobject.ReviewStatusApproved)
}

// ListOpen возвращает одобренные проекты, ещё не набравшие нужную сумму.
func (r *ProjectRepository) ListOpen(ctx context.Context) ([]models.Project, error) {
	return r.list(ctx, "list open",
		`SELECT * FROM projects WHERE admin_status = $1 AND amount_funded < amount ORDER BY created_at DESC`,
		valueobject.ReviewStatusApproved)
}

func (r *ProjectRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: %s %w", op, err)
	}
	return projects, nil
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// Stats собирает агрегаты по проектам для администратора.
func (r *ProjectRepository) Stats(ctx context.Context) (*models.ProjectStats, error) {
	stats := &models.ProjectStats{
		ByAdminStatus: map[string]int{},
		ByStatus:      map[string]int{},
	}

	if err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(amount_funded), 0) FROM projects
	`).Scan(&stats.Total, &stats.TotalRequested, &stats.TotalFunded); err != nil {
		return nil, fmt.Errorf("project repository: stats totals %w", err)
	}

	var byAdmin []statusCount
	if err := r.db.SelectContext(ctx, &byAdmin,
		`SELECT admin_status AS status, COUNT(*) AS count FROM projects GROUP BY admin_status`); err != nil {
		return nil, fmt.Errorf("project repository: stats by admin status %w", err)
	}
	for _, row := range byAdmin {
		stats.ByAdminStatus[row.Status] = row.Count
	}

	var byStatus []statusCount
	if err := r.db.SelectContext(ctx, &byStatus,
		`SELECT status, COUNT(*) AS count FROM projects GROUP BY status`); err != nil {
		return nil, fmt.Errorf("project repository: stats by status %w", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
	}

	return stats, nil
}
