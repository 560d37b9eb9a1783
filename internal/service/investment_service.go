package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/validation"
	"github.com/ignatzorin/ruralfund-backend/internal/ws"
)

// InvestmentRepository описывает хранилище инвестиций.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *models.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	Review(ctx context.Context, id uuid.UUID, fn func(inv *models.Investment, project *models.Project) error) (*models.Investment, *models.Project, error)
	ListAll(ctx context.Context) ([]models.InvestmentView, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.InvestmentView, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.InvestmentView, error)
}

// ProjectReader нужен для проверки существования проекта.
type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type CreateInvestmentInput struct {
	Amount           float64
	ProjectID        uuid.UUID
	BankDetails      models.BankDetails
	PersonalDetails  models.PersonalDetails
	InvestmentReason *string
}

// ReviewInvestmentInput описывает действие администратора над заявкой.
type ReviewInvestmentInput struct {
	Action          string
	RejectionReason string
}

// InvestmentService ведёт заявки и сверяет финансирование проектов.
type InvestmentService struct {
	repo     InvestmentRepository
	projects ProjectReader
	cache    Cache
	notifier Notifier
	now      func() time.Time
}

func NewInvestmentService(repo InvestmentRepository, projects ProjectReader, cache Cache, notifier Notifier) *InvestmentService {
	return &InvestmentService{
		repo:     repo,
		projects: projects,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create проверяет реквизиты и KYC и создаёт заявку от имени actor.
// Заявки принимаются только в проекты, одобренные администратором.
func (s *InvestmentService) Create(ctx context.Context, actor *Principal, in CreateInvestmentInput) (*models.Investment, error) {
	if _, err := valueobject.NewInvestmentAmount(in.Amount); err != nil {
		return nil, err
	}
	if in.ProjectID == uuid.Nil {
		return nil, apperror.Validation("projectId обязателен")
	}

	bank, personal, err := normalizeInvestmentDetails(in.BankDetails, in.PersonalDetails)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.AdminStatus != valueobject.ReviewStatusApproved {
		return nil, apperror.ErrProjectNotApproved
	}

	inv := &models.Investment{
		Amount:           in.Amount,
		ProjectID:        in.ProjectID,
		InvestorID:       actor.ID,
		BankDetails:      bank,
		PersonalDetails:  personal,
		InvestmentReason: trimmedOrNil(in.InvestmentReason),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	logger.Entry(logrus.Fields{
		"investment_id": inv.ID,
		"project_id":    inv.ProjectID,
		"amount":        inv.Amount,
	}).Info("investment service: заявка создана")
	return inv, nil
}

func normalizeInvestmentDetails(bank models.BankDetails, personal models.PersonalDetails) (models.BankDetails, models.PersonalDetails, error) {
	required := []struct {
		field string
		value string
	}{
		{"номер счёта", bank.AccountNumber},
		{"название банка", bank.BankName},
		{"код IFSC", bank.IFSCCode},
		{"владелец счёта", bank.AccountHolderName},
		{"номер PAN", personal.PANNumber},
		{"номер Aadhaar", personal.AadharNumber},
	}
	for _, r := range required {
		if err := validation.ValidateNonEmpty(r.field, r.value); err != nil {
			return bank, personal, apperror.Validation(err.Error())
		}
	}

	checks := []func() error{
		func() error { return validation.ValidateAccountNumber(bank.AccountNumber) },
		func() error { return validation.ValidateIFSC(bank.IFSCCode) },
		func() error { return validation.ValidatePAN(personal.PANNumber) },
		func() error { return validation.ValidateAadhar(personal.AadharNumber) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return bank, personal, apperror.Validation(err.Error())
		}
	}

	bank.AccountNumber = validation.NormalizeKYC(bank.AccountNumber)
	bank.IFSCCode = validation.NormalizeKYC(bank.IFSCCode)
	bank.BankName = strings.TrimSpace(bank.BankName)
	bank.AccountHolderName = strings.TrimSpace(bank.AccountHolderName)
	bank.BankBranch = trimmedOrNil(bank.BankBranch)
	personal.PANNumber = validation.NormalizeKYC(personal.PANNumber)
	personal.AadharNumber = validation.NormalizeKYC(personal.AadharNumber)

	return bank, personal, nil
}

// Review одобряет, отклоняет или возвращает заявку на рассмотрение. Изменение заявки
// и суммы финансирования проекта фиксируются в одной транзакции.
func (s *InvestmentService) Review(ctx context.Context, actor *Principal, id uuid.UUID, in ReviewInvestmentInput) (*models.Investment, error) {
	action, err := valueobject.NewInvestmentAction(in.Action)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.RejectionReason)
	if action == valueobject.ActionReject {
		if err := validation.ValidateRejectionReason(reason); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}

	now := s.now()
	var previous valueobject.ReviewStatus

	inv, project, err := s.repo.Review(ctx, id, func(inv *models.Investment, project *models.Project) error {
		previous = inv.Status
		switch action {
		case valueobject.ActionApprove:
			if err := inv.Approve(actor.Name, now); err != nil {
				return err
			}
			project.AddFunding(inv.Amount)
		case valueobject.ActionReject:
			if wasApproved := inv.Reject(reason); wasApproved {
				project.RevertFunding(inv.Amount)
			}
		case valueobject.ActionUnderReview:
			inv.MarkUnderReview()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, projectListKeys...)
	}

	logger.Entry(logrus.Fields{
		"investment_id":  inv.ID,
		"project_id":     project.ID,
		"from":           previous,
		"to":             inv.Status,
		"amount_funded":  project.AmountFunded,
		"project_status": project.Status,
		"reviewer":       actor.Name,
	}).Info("investment service: статус заявки изменён")

	event := map[string]interface{}{
		"investmentId":    inv.ID,
		"projectId":       project.ID,
		"projectTitle":    project.Title,
		"status":          inv.Status,
		"rejectionReason": inv.RejectionReason,
		"amountFunded":    project.AmountFunded,
		"projectStatus":   project.Status,
	}
	s.notify(inv.InvestorID, event)
	if project.OwnerID != inv.InvestorID {
		s.notify(project.OwnerID, event)
	}

	return inv, nil
}

func (s *InvestmentService) ListAll(ctx context.Context) ([]models.InvestmentView, error) {
	return s.repo.ListAll(ctx)
}

func (s *InvestmentService) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.InvestmentView, error) {
	return s.repo.ListByInvestor(ctx, investorID)
}

func (s *InvestmentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.InvestmentView, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *InvestmentService) notify(userID uuid.UUID, data interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, ws.EventInvestmentStatusChanged, data); err != nil {
		logger.Entry(logrus.Fields{"user_id": userID}).WithError(err).Warn("investment service: уведомление не отправлено")
	}
}
