package valueobject

import "github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"

// ProjectStatus описывает состояние финансирования. Меняется владельцем и сверкой.
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "Pending"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusApproved   ProjectStatus = "Approved"
	ProjectStatusCompleted  ProjectStatus = "Completed"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusApproved, ProjectStatusCompleted:
		return true
	}
	return false
}

func NewProjectStatus(status string) (ProjectStatus, error) {
	if status == "" {
		return ProjectStatusPending, nil
	}
	s := ProjectStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус проекта")
	}
	return s, nil
}

// ReviewStatus используется и для adminStatus проекта, и для статуса инвестиции.
type ReviewStatus string

const (
	ReviewStatusPending     ReviewStatus = "Pending"
	ReviewStatusUnderReview ReviewStatus = "Under Review"
	ReviewStatusApproved    ReviewStatus = "Approved"
	ReviewStatusRejected    ReviewStatus = "Rejected"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusUnderReview, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func NewPriority(priority string) (Priority, error) {
	if priority == "" {
		return PriorityMedium, nil
	}
	p := Priority(priority)
	if !p.IsValid() {
		return "", apperror.Validation("некорректный приоритет проекта")
	}
	return p, nil
}

// ReviewAction описывает действие администратора над проектом или инвестицией.
type ReviewAction string

const (
	ActionApprove     ReviewAction = "approve"
	ActionReject      ReviewAction = "reject"
	ActionUnderReview ReviewAction = "under review"
)

// NewInvestmentAction принимает approve, reject и under review.
func NewInvestmentAction(action string) (ReviewAction, error) {
	switch a := ReviewAction(action); a {
	case ActionApprove, ActionReject, ActionUnderReview:
		return a, nil
	}
	return "", apperror.Validation("некорректное действие")
}

// NewProjectAction принимает только approve и reject.
func NewProjectAction(action string) (ReviewAction, error) {
	switch a := ReviewAction(action); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", apperror.Validation("некорректное действие")
}

type QueryType string

const (
	QueryGeneral   QueryType = "general"
	QueryTechnical QueryType = "technical"
	QueryProject   QueryType = "project"
	QueryPayment   QueryType = "payment"
	QueryFeedback  QueryType = "feedback"
	QueryOther     QueryType = "other"
)

func NewQueryType(queryType string) (QueryType, error) {
	if queryType == "" {
		return QueryGeneral, nil
	}
	switch q := QueryType(queryType); q {
	case QueryGeneral, QueryTechnical, QueryProject, QueryPayment, QueryFeedback, QueryOther:
		return q, nil
	}
	return "", apperror.Validation("некорректный тип обращения")
}

type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in-progress"
	ContactStatusResolved   ContactStatus = "resolved"
)

func NewContactStatus(status string) (ContactStatus, error) {
	switch s := ContactStatus(status); s {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusResolved:
		return s, nil
	}
	return "", apperror.Validation("некорректный статус обращения")
}

// Role определяет, какие маршруты доступны владельцу токена.
type Role string

const (
	RoleUser     Role = "user"
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)
