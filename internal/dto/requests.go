package dto

import (
	"github.com/google/uuid"
)

// ReviewRequest используется и для проектов, и для инвестиций.
type ReviewRequest struct {
	Action          string `json:"action" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

type UpdateNotesRequest struct {
	FundUtilizationNotes string `json:"fundUtilizationNotes"`
}

// FundDetailRequest: строка отчёта о расходах. Amount указатель: отсутствующая сумма
// отличается от нулевой. Date принимает RFC3339 или YYYY-MM-DD.
type FundDetailRequest struct {
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
	Date        *string  `json:"date"`
}

type UpdateFundDetailsRequest struct {
	FundUtilizationDetails []FundDetailRequest `json:"fundUtilizationDetails" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type BankDetailsRequest struct {
	AccountNumber     string  `json:"accountNumber"`
	BankName          string  `json:"bankName"`
	BankBranch        *string `json:"bankBranch"`
	IFSCCode          string  `json:"ifscCode"`
	AccountHolderName string  `json:"accountHolderName"`
}

type PersonalDetailsRequest struct {
	PANNumber    string `json:"panNumber"`
	AadharNumber string `json:"aadharNumber"`
}

// InvestorID берётся из токена, в теле его нет.
type CreateInvestmentRequest struct {
	Amount           float64                `json:"amount"`
	ProjectID        uuid.UUID              `json:"projectId"`
	BankDetails      BankDetailsRequest     `json:"bankDetails"`
	PersonalDetails  PersonalDetailsRequest `json:"personalDetails"`
	InvestmentReason *string                `json:"investmentReason"`
}

type CreateUserRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Occupation *string `json:"occupation"`
}

type CreateInvestorRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Occupation string `json:"occupation"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ContactRequest struct {
	Name      string     `json:"name" binding:"required"`
	Email     string     `json:"email" binding:"required"`
	Phone     *string    `json:"phone"`
	QueryType string     `json:"queryType" binding:"required"`
	Message   string     `json:"message" binding:"required"`
	UserID    *uuid.UUID `json:"userId"`
}

type ContactStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
