package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
)

// Project описывает проект, для которого собираются инвестиции.
type Project struct {
	ID                     uuid.UUID                 `db:"id" json:"id"`
	Title                  string                    `db:"title" json:"title"`
	Description            string                    `db:"description" json:"description"`
	Amount                 float64                   `db:"amount" json:"amount"`
	AmountFunded           float64                   `db:"amount_funded" json:"amountFunded"`
	Location               string                    `db:"location" json:"location"`
	Deadline               time.Time                 `db:"deadline" json:"deadline"`
	Status                 valueobject.ProjectStatus `db:"status" json:"status"`
	AdminStatus            valueobject.ReviewStatus  `db:"admin_status" json:"adminStatus"`
	Priority               valueobject.Priority      `db:"priority" json:"priority"`
	Engineer               *string                   `db:"engineer" json:"engineer,omitempty"`
	DocumentPath           *string                   `db:"document_path" json:"document,omitempty"`
	OwnerID                uuid.UUID                 `db:"owner_id" json:"ownerId"`
	RejectionReason        *string                   `db:"rejection_reason" json:"rejectionReason,omitempty"`
	AdminReviewedAt        *time.Time                `db:"admin_reviewed_at" json:"adminReviewedAt,omitempty"`
	AdminReviewedBy        *string                   `db:"admin_reviewed_by" json:"adminReviewedBy,omitempty"`
	FundUtilizationNotes   string                    `db:"fund_utilization_notes" json:"fundUtilizationNotes"`
	FundUtilizationDetails FundUtilizationDetails    `db:"fund_utilization_details" json:"fundUtilizationDetails"`
	CreatedAt              time.Time                 `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time                 `db:"updated_at" json:"updatedAt"`
}

// FundUtilizationDetail описывает одну строку отчёта о расходовании средств.
type FundUtilizationDetail struct {
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// FundUtilizationDetails хранится в JSONB-колонке целиком.
type FundUtilizationDetails []FundUtilizationDetail

func (d FundUtilizationDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

func (d *FundUtilizationDetails) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = FundUtilizationDetails{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("fund utilization details: неподдерживаемый тип %T", src)
	}

	var out FundUtilizationDetails
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("fund utilization details: %w", err)
	}
	if out == nil {
		out = FundUtilizationDetails{}
	}
	*d = out
	return nil
}

// Total возвращает сумму всех строк отчёта.
func (d FundUtilizationDetails) Total() float64 {
	var sum float64
	for _, item := range d {
		sum += item.Amount
	}
	return sum
}

// AddFunding учитывает одобренную инвестицию. Полностью профинансированный проект
// переходит в Completed.
func (p *Project) AddFunding(amount float64) {
	p.AmountFunded += amount
	if p.AmountFunded >= p.Amount {
		p.Status = valueobject.ProjectStatusCompleted
	}
}

// RevertFunding снимает ранее учтённую инвестицию, не опускаясь ниже нуля.
func (p *Project) RevertFunding(amount float64) {
	p.AmountFunded -= amount
	if p.AmountFunded < 0 {
		p.AmountFunded = 0
	}
	if p.Status == valueobject.ProjectStatusCompleted && p.AmountFunded < p.Amount {
		p.Status = valueobject.ProjectStatusInProgress
	}
}

// Review фиксирует решение администратора по проекту. Статус финансирования не меняется.
func (p *Project) Review(approved bool, reason, reviewer string, now time.Time) {
	if approved {
		p.AdminStatus = valueobject.ReviewStatusApproved
		p.RejectionReason = nil
	} else {
		p.AdminStatus = valueobject.ReviewStatusRejected
		p.RejectionReason = &reason
	}
	p.AdminReviewedAt = &now
	p.AdminReviewedBy = &reviewer
}

// ProjectProgress сводит финансирование и расходы одного проекта.
type ProjectProgress struct {
	ProjectID      uuid.UUID                 `json:"projectId"`
	Amount         float64                   `json:"amount"`
	AmountFunded   float64                   `json:"amountFunded"`
	FundedPercent  float64                   `json:"fundedPercent"`
	UtilizedTotal  float64                   `json:"utilizedTotal"`
	RemainingFunds float64                   `json:"remainingFunds"`
	Status         valueobject.ProjectStatus `json:"status"`
	AdminStatus    valueobject.ReviewStatus  `json:"adminStatus"`
}

// Progress считает сводку по текущему состоянию проекта.
func (p *Project) Progress() ProjectProgress {
	utilized := p.FundUtilizationDetails.Total()
	var percent float64
	if p.Amount > 0 {
		percent = p.AmountFunded / p.Amount * 100
	}
	return ProjectProgress{
		ProjectID:      p.ID,
		Amount:         p.Amount,
		AmountFunded:   p.AmountFunded,
		FundedPercent:  percent,
		UtilizedTotal:  utilized,
		RemainingFunds: p.AmountFunded - utilized,
		Status:         p.Status,
		AdminStatus:    p.AdminStatus,
	}
}

// ProjectStats содержит агрегаты для панели администратора.
type ProjectStats struct {
	Total          int            `json:"total"`
	ByAdminStatus  map[string]int `json:"byAdminStatus"`
	ByStatus       map[string]int `json:"byStatus"`
	TotalRequested float64        `json:"totalRequested"`
	TotalFunded    float64        `json:"totalFunded"`
}
