package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// BankDetails содержит реквизиты, на которые оформляется инвестиция.
type BankDetails struct {
	AccountNumber     string  `db:"account_number" json:"accountNumber"`
	BankName          string  `db:"bank_name" json:"bankName"`
	BankBranch        *string `db:"bank_branch" json:"bankBranch,omitempty"`
	IFSCCode          string  `db:"ifsc_code" json:"ifscCode"`
	AccountHolderName string  `db:"account_holder_name" json:"accountHolderName"`
}

// KYC-данные инвестора
type PersonalDetails struct {
	PANNumber    string `db:"pan_number" json:"panNumber"`
	AadharNumber string `db:"aadhar_number" json:"aadharNumber"`
}

// Investment описывает заявку инвестора на участие в проекте.
type Investment struct {
	ID               uuid.UUID                `db:"id" json:"id"`
	Amount           float64                  `db:"amount" json:"amount"`
	ProjectID        uuid.UUID                `db:"project_id" json:"projectId"`
	InvestorID       uuid.UUID                `db:"investor_id" json:"investorId"`
	BankDetails      `json:"bankDetails"`
	PersonalDetails  `json:"personalDetails"`
	InvestmentReason *string                  `db:"investment_reason" json:"investmentReason,omitempty"`
	Status           valueobject.ReviewStatus `db:"status" json:"status"`
	RejectionReason  *string                  `db:"rejection_reason" json:"rejectionReason,omitempty"`
	AdminApprovedAt  *time.Time               `db:"admin_approved_at" json:"adminApprovedAt,omitempty"`
	AdminApprovedBy  *string                  `db:"admin_approved_by" json:"adminApprovedBy,omitempty"`
	CreatedAt        time.Time                `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time                `db:"updated_at" json:"updatedAt"`
}

// Approve переводит инвестицию в Approved. Повторное одобрение запрещено.
func (i *Investment) Approve(by string, now time.Time) error {
	if i.Status == valueobject.ReviewStatusApproved {
		return apperror.ErrInvestmentAlreadyApproved
	}
	i.Status = valueobject.ReviewStatusApproved
	i.AdminApprovedAt = &now
	i.AdminApprovedBy = &by
	i.RejectionReason = nil
	return nil
}

// Reject отклоняет инвестицию и сообщает, была ли она до этого одобрена.
func (i *Investment) Reject(reason string) (wasApproved bool) {
	wasApproved = i.Status == valueobject.ReviewStatusApproved
	i.Status = valueobject.ReviewStatusRejected
	i.RejectionReason = &reason
	i.AdminApprovedAt = nil
	i.AdminApprovedBy = nil
	return wasApproved
}

// MarkUnderReview сбрасывает отметки одобрения и отказа.
func (i *Investment) MarkUnderReview() {
	i.Status = valueobject.ReviewStatusUnderReview
	i.AdminApprovedAt = nil
	i.AdminApprovedBy = nil
	i.RejectionReason = nil
}

// ProjectSummary раскрывается в списках инвестиций.
type ProjectSummary struct {
	Title        string                    `db:"title" json:"title"`
	Amount       float64                   `db:"amount" json:"amount"`
	Location     string                    `db:"location" json:"location"`
	AmountFunded float64                   `db:"amount_funded" json:"amountFunded"`
	Status       valueobject.ProjectStatus `db:"status" json:"status"`
}

type InvestorSummary struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// InvestmentView объединяет инвестицию с кратким описанием проекта и инвестора.
type InvestmentView struct {
	Investment
	Project  ProjectSummary  `db:"project" json:"project"`
	Investor InvestorSummary `db:"investor" json:"investor"`
}
