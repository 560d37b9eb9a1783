package service

import (
	"context"
	"fmt"
	"io"
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

// ProjectRepository описывает хранилище проектов.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ProjectStatus) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	UpdateFundDetails(ctx context.Context, id uuid.UUID, details models.FundUtilizationDetails) error
	SaveReview(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]models.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	ListApproved(ctx context.Context) ([]models.Project, error)
	ListOpen(ctx context.Context) ([]models.Project, error)
	Stats(ctx context.Context) (*models.ProjectStats, error)
}

// DocumentStorage сохраняет и удаляет файлы документов проекта.
type DocumentStorage interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, relativePath string) error
}

// Notifier доставляет события подключённым клиентам.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// Document передаётся вместе с формой проекта.
type Document struct {
	Filename string
	Content  io.Reader
}

type CreateProjectInput struct {
	Title       string
	Description string
	Amount      float64
	Location    string
	Deadline    time.Time
	Status      string
	Priority    string
	Engineer    *string
	OwnerID     *uuid.UUID
	Document    *Document
}

// UpdateProjectInput: nil означает «не менять».
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Amount      *float64
	Location    *string
	Deadline    *time.Time
	Priority    *string
	Engineer    *string
	Document    *Document
}

type ReviewProjectInput struct {
	Action          string
	RejectionReason string
}

// FundDetailInput описывает строку отчёта о расходах до нормализации.
type FundDetailInput struct {
	Amount      *float64
	Description string
	Date        *time.Time
}

// ProjectService содержит правила работы с проектами.
type ProjectService struct {
	repo     ProjectRepository
	docs     DocumentStorage
	cache    Cache
	notifier Notifier
	cacheTTL time.Duration
	now      func() time.Time
}

func NewProjectService(repo ProjectRepository, docs DocumentStorage, cache Cache, notifier Notifier, cacheTTL time.Duration) *ProjectService {
	return &ProjectService{
		repo:     repo,
		docs:     docs,
		cache:    cache,
		notifier: notifier,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Create проверяет форму, сохраняет документ и создаёт проект от имени владельца.
func (s *ProjectService) Create(ctx context.Context, actor *Principal, in CreateProjectInput) (*models.Project, error) {
	if in.OwnerID != nil && *in.OwnerID != actor.ID {
		return nil, apperror.ErrForbidden
	}

	if err := s.validateFields(in.Title, in.Description, in.Location, in.Amount, in.Deadline); err != nil {
		return nil, err
	}
	status, err := valueobject.NewProjectStatus(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := valueobject.NewPriority(in.Priority)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Location:    strings.TrimSpace(in.Location),
		Deadline:    in.Deadline,
		Status:      status,
		Priority:    priority,
		Engineer:    trimmedOrNil(in.Engineer),
		OwnerID:     actor.ID,
	}

	if in.Document != nil {
		path, err := s.docs.Save(ctx, actor.ID, in.Document.Filename, in.Document.Content)
		if err != nil {
			return nil, err
		}
		project.DocumentPath = &path
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if project.DocumentPath != nil {
			s.removeDocument(ctx, *project.DocumentPath)
		}
		return nil, err
	}

	logger.Entry(logrus.Fields{"project_id": project.ID, "owner_id": actor.ID}).Info("project service: проект создан")
	return project, nil
}

// Update меняет разрешённые поля проекта владельца; новый документ заменяет старый.
func (s *ProjectService) Update(ctx context.Context, actor *Principal, id uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		project.Amount = *in.Amount
	}
	if in.Location != nil {
		project.Location = strings.TrimSpace(*in.Location)
	}
	if in.Engineer != nil {
		project.Engineer = trimmedOrNil(in.Engineer)
	}
	if in.Priority != nil {
		priority, err := valueobject.NewPriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		project.Priority = priority
	}

	if err := validateTextFields(project.Title, project.Description, project.Location); err != nil {
		return nil, err
	}
	if _, err := valueobject.NewRequestedAmount(project.Amount); err != nil {
		return nil, err
	}
	if in.Deadline != nil {
		if err := validation.ValidateDeadline(*in.Deadline, s.now()); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		project.Deadline = *in.Deadline
	}

	var oldDocument *string
	if in.Document != nil {
		path, err := s.docs.Save(ctx, actor.ID, in.Document.Filename, in.Document.Content)
		if err != nil {
			return nil, err
		}
		oldDocument = project.DocumentPath
		project.DocumentPath = &path
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if in.Document != nil {
			s.removeDocument(ctx, *project.DocumentPath)
		}
		return nil, err
	}
	if oldDocument != nil {
		s.removeDocument(ctx, *oldDocument)
	}

	s.invalidateLists(ctx)
	return project, nil
}

// Delete удаляет проект владельца вместе с его инвестициями и документом.
func (s *ProjectService) Delete(ctx context.Context, actor *Principal, id uuid.UUID) error {
	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if project.DocumentPath != nil {
		s.removeDocument(ctx, *project.DocumentPath)
	}

	s.invalidateLists(ctx)
	logger.Entry(logrus.Fields{"project_id": id}).Info("project service: проект удалён")
	return nil
}

// SetStatus позволяет владельцу вручную поменять статус финансирования.
func (s *ProjectService) SetStatus(ctx context.Context, actor *Principal, id uuid.UUID, raw string) (*models.Project, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperror.Validation("статус обязателен")
	}
	status, err := valueobject.NewProjectStatus(raw)
	if err != nil {
		return nil, err
	}

	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	project.Status = status

	s.invalidateLists(ctx)
	return project, nil
}

// UpdateNotes целиком заменяет текстовые заметки о расходовании средств.
func (s *ProjectService) UpdateNotes(ctx context.Context, actor *Principal, id uuid.UUID, notes string) (*models.Project, error) {
	if err := validation.ValidateLength("заметки", notes, 0, validation.MaxNotesLength); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	project.FundUtilizationNotes = notes

	s.invalidateLists(ctx)
	return project, nil
}

// UpdateFundDetails целиком заменяет список расходов. Строки сохраняются как пришли,
// пустая дата заменяется текущим временем.
func (s *ProjectService) UpdateFundDetails(ctx context.Context, actor *Principal, id uuid.UUID, in []FundDetailInput) (*models.Project, error) {
	details, err := s.normalizeFundDetails(in)
	if err != nil {
		return nil, err
	}

	project, err := s.ownedProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFundDetails(ctx, id, details); err != nil {
		return nil, err
	}
	project.FundUtilizationDetails = details
	s.invalidateLists(ctx)

	if utilized := details.Total(); utilized > project.AmountFunded {
		logger.Entry(logrus.Fields{
			"project_id": id,
			"utilized":   utilized,
			"funded":     project.AmountFunded,
		}).Warn("project service: расходы превышают собранную сумму")
	}
	return project, nil
}

func (s *ProjectService) normalizeFundDetails(in []FundDetailInput) (models.FundUtilizationDetails, error) {
	details := make(models.FundUtilizationDetails, 0, len(in))
	now := s.now()

	for i, item := range in {
		if item.Amount == nil {
			return nil, apperror.Validation(positionalMessage(i, "сумма обязательна"))
		}
		amount, err := valueobject.NewUtilizedAmount(*item.Amount)
		if err != nil {
			return nil, apperror.Validation(positionalMessage(i, errMessage(err)))
		}
		if strings.TrimSpace(item.Description) == "" {
			return nil, apperror.Validation(positionalMessage(i, "описание обязательно"))
		}
		if err := validation.ValidateLength("описание", item.Description, 0, validation.MaxUtilizationDescription); err != nil {
			return nil, apperror.Validation(positionalMessage(i, err.Error()))
		}

		date := now
		if item.Date != nil && !item.Date.IsZero() {
			date = *item.Date
		}
		details = append(details, models.FundUtilizationDetail{
			Amount:      amount,
			Description: item.Description,
			Date:        date,
		})
	}
	return details, nil
}

// Review выставляет adminStatus. Статус финансирования не меняется.
func (s *ProjectService) Review(ctx context.Context, actor *Principal, id uuid.UUID, in ReviewProjectInput) (*models.Project, error) {
	action, err := valueobject.NewProjectAction(in.Action)
	if err != nil {
		return nil, err
	}
	if action == valueobject.ActionReject {
		if err := validation.ValidateRejectionReason(in.RejectionReason); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Review(action == valueobject.ActionApprove, strings.TrimSpace(in.RejectionReason), actor.Name, s.now())
	if err := s.repo.SaveReview(ctx, project); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx)
	s.notify(project.OwnerID, ws.EventProjectReviewed, map[string]interface{}{
		"projectId":       project.ID,
		"title":           project.Title,
		"adminStatus":     project.AdminStatus,
		"rejectionReason": project.RejectionReason,
	})

	logger.Entry(logrus.Fields{
		"project_id":   id,
		"admin_status": project.AdminStatus,
		"reviewer":     actor.Name,
	}).Info("project service: проект рассмотрен")
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectService) Progress(ctx context.Context, id uuid.UUID) (*models.ProjectProgress, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	progress := project.Progress()
	return &progress, nil
}

func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	return s.repo.ListAll(ctx)
}

func (s *ProjectService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListApproved возвращает проекты, видимые инвесторам: только adminStatus=Approved.
func (s *ProjectService) ListApproved(ctx context.Context) ([]models.Project, error) {
	return s.cachedList(ctx, cacheKeyApprovedProjects, s.repo.ListApproved)
}

// ListOpen возвращает одобренные проекты, ещё не набравшие сумму.
func (s *ProjectService) ListOpen(ctx context.Context) ([]models.Project, error) {
	return s.cachedList(ctx, cacheKeyOpenProjects, s.repo.ListOpen)
}

func (s *ProjectService) Stats(ctx context.Context) (*models.ProjectStats, error) {
	return s.repo.Stats(ctx)
}

func (s *ProjectService) cachedList(ctx context.Context, key string, load func(context.Context) ([]models.Project, error)) ([]models.Project, error) {
	var cached []models.Project
	if s.cache != nil && s.cache.Load(ctx, key, &cached) {
		return cached, nil
	}

	projects, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Store(ctx, key, projects, s.cacheTTL)
	}
	return projects, nil
}

func (s *ProjectService) invalidateLists(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectListKeys...)
	}
}

// ownedProject загружает проект и проверяет, что actor его владелец.
func (s *ProjectService) ownedProject(ctx context.Context, actor *Principal, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	return project, nil
}

func (s *ProjectService) validateFields(title, description, location string, amount float64, deadline time.Time) error {
	if err := validateTextFields(title, description, location); err != nil {
		return err
	}
	if _, err := valueobject.NewRequestedAmount(amount); err != nil {
		return err
	}
	if err := validation.ValidateDeadline(deadline, s.now()); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func (s *ProjectService) removeDocument(ctx context.Context, path string) {
	if err := s.docs.Delete(ctx, path); err != nil {
		logger.Entry(logrus.Fields{"path": path}).WithError(err).Warn("project service: не удалось удалить документ")
	}
}

func (s *ProjectService) notify(userID uuid.UUID, event string, data interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil {
		logger.Entry(logrus.Fields{"user_id": userID, "event": event}).WithError(err).Warn("project service: уведомление не отправлено")
	}
}

func validateTextFields(title, description, location string) error {
	if err := validation.ValidateProjectTitle(title); err != nil {
		return apperror.Validation(err.Error())
	}
	if err := validation.ValidateProjectDescription(description); err != nil {
		return apperror.Validation(err.Error())
	}
	if err := validation.ValidateLocation(location); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

// errMessage отдаёт текст ошибки без кода AppError.
func errMessage(err error) string {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

func positionalMessage(index int, msg string) string {
	return fmt.Sprintf("строка %d: %s", index+1, msg)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
