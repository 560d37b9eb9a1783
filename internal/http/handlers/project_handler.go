package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/http/handlers/common"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
	"github.com/ignatzorin/ruralfund-backend/internal/validation"
)

const documentField = "document"

// ProjectService описывает операции над проектами, нужные HTTP слою.
type ProjectService interface {
	Create(ctx context.Context, actor *service.Principal, in service.CreateProjectInput) (*models.Project, error)
	Update(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, actor *service.Principal, id uuid.UUID) error
	SetStatus(ctx context.Context, actor *service.Principal, id uuid.UUID, status string) (*models.Project, error)
	UpdateNotes(ctx context.Context, actor *service.Principal, id uuid.UUID, notes string) (*models.Project, error)
	UpdateFundDetails(ctx context.Context, actor *service.Principal, id uuid.UUID, in []service.FundDetailInput) (*models.Project, error)
	Review(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.ReviewProjectInput) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Progress(ctx context.Context, id uuid.UUID) (*models.ProjectProgress, error)
	ListAll(ctx context.Context) ([]models.Project, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	ListApproved(ctx context.Context) ([]models.Project, error)
	ListOpen(ctx context.Context) ([]models.Project, error)
	Stats(ctx context.Context) (*models.ProjectStats, error)
}

// ProjectHandler обслуживает /api/projects.
type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create обрабатывает POST /projects/create (multipart/form-data).
func (h *ProjectHandler) Create(c *gin.Context) {
	actor, err := common.CurrentPrincipal(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	amount, err := parseAmountField(c.PostForm("amount"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	deadline, err := parseDateField(c.PostForm("deadline"))
	if err != nil {
		common.Fail(c, err)
		return
	}

	in := service.CreateProjectInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Amount:      amount,
		Location:    c.PostForm("location"),
		Deadline:    deadline,
		Status:      c.PostForm("status"),
		Priority:    c.PostForm("priority"),
		Engineer:    optionalFormValue(c, "engineer"),
	}
	if raw := strings.TrimSpace(c.PostForm("ownerId")); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			common.Fail(c, apperror.Validation("ownerId должен быть валидным UUID"))
			return
		}
		in.OwnerID = &ownerID
	}

	doc, closeDoc, err := formDocument(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	defer closeDoc()
	in.Document = doc

	project, err := h.projects.Create(c.Request.Context(), actor, in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ProjectResponse{Success: true, Message: "проект создан", Project: project})
}

// Update обрабатывает PUT /projects/:id (multipart/form-data). Пустые поля не меняются.
func (h *ProjectHandler) Update(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var in service.UpdateProjectInput
	in.Title = optionalFormValue(c, "title")
	in.Description = optionalFormValue(c, "description")
	in.Location = optionalFormValue(c, "location")
	in.Priority = optionalFormValue(c, "priority")
	in.Engineer = optionalFormValue(c, "engineer")

	if raw := optionalFormValue(c, "amount"); raw != nil {
		amount, err := parseAmountField(*raw)
		if err != nil {
			common.Fail(c, err)
			return
		}
		in.Amount = &amount
	}
	if raw := optionalFormValue(c, "deadline"); raw != nil {
		deadline, err := parseDateField(*raw)
		if err != nil {
			common.Fail(c, err)
			return
		}
		in.Deadline = &deadline
	}

	doc, closeDoc, err := formDocument(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	defer closeDoc()
	in.Document = doc

	project, err := h.projects.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Success: true, Message: "проект обновлён", Project: project})
}

// Delete обрабатывает DELETE /projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), actor, id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "проект удалён"})
}

// SetStatus обрабатывает PATCH /projects/status/:id.
func (h *ProjectHandler) SetStatus(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	project, err := h.projects.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Success: true, Message: "статус проекта обновлён", Project: project})
}

// UpdateNotes обрабатывает PATCH /projects/notes/:id.
func (h *ProjectHandler) UpdateNotes(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req dto.UpdateNotesRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	project, err := h.projects.UpdateNotes(c.Request.Context(), actor, id, req.FundUtilizationNotes)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Success: true, Message: "заметки о расходах обновлены", Project: project})
}

// UpdateFundDetails обрабатывает PATCH /projects/fund-details/:id.
func (h *ProjectHandler) UpdateFundDetails(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req dto.UpdateFundDetailsRequest
	if err := common.BindJSON(c, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "fundUtilizationDetails" {
			err = apperror.Validation("fundUtilizationDetails должен быть массивом")
		}
		common.Fail(c, err)
		return
	}

	in := make([]service.FundDetailInput, 0, len(req.FundUtilizationDetails))
	for i, d := range req.FundUtilizationDetails {
		detail := service.FundDetailInput{Amount: d.Amount, Description: d.Description}
		if d.Date != nil && strings.TrimSpace(*d.Date) != "" {
			date, err := validation.ParseDate(*d.Date)
			if err != nil {
				common.Fail(c, apperror.Validation(fmt.Sprintf("строка %d: %s", i+1, err.Error())))
				return
			}
			detail.Date = &date
		}
		in = append(in, detail)
	}

	project, err := h.projects.UpdateFundDetails(c.Request.Context(), actor, id, in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Success: true, Message: "отчёт о расходах обновлён", Project: project})
}

// Review обрабатывает PUT /projects/admin/:id.
func (h *ProjectHandler) Review(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	project, err := h.projects.Review(c.Request.Context(), actor, id, service.ReviewProjectInput{
		Action:          req.Action,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{
		Success: true,
		Message: fmt.Sprintf("решение по проекту сохранено: %s", project.AdminStatus),
		Project: project,
	})
}

// Get обрабатывает GET /projects/project/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Progress обрабатывает GET /projects/project/:id/progress.
func (h *ProjectHandler) Progress(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	progress, err := h.projects.Progress(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListOpen обрабатывает публичный GET /projects.
func (h *ProjectHandler) ListOpen(c *gin.Context) {
	h.respondList(c, h.projects.ListOpen)
}

// ListApproved обрабатывает GET /projects/investor/approved.
func (h *ProjectHandler) ListApproved(c *gin.Context) {
	h.respondList(c, h.projects.ListApproved)
}

// ListAll обрабатывает GET /projects/admin/all.
func (h *ProjectHandler) ListAll(c *gin.Context) {
	h.respondList(c, h.projects.ListAll)
}

// ListByOwner обрабатывает GET /projects/owner/:ownerId. Чужие проекты видит только администратор.
func (h *ProjectHandler) ListByOwner(c *gin.Context) {
	ownerID, err := common.ParseUUIDParam(c, "ownerId")
	if err != nil {
		common.Fail(c, err)
		return
	}
	if _, err := common.RequireSelfOrAdmin(c, ownerID); err != nil {
		common.Fail(c, err)
		return
	}
	h.respondList(c, func(ctx context.Context) ([]models.Project, error) {
		return h.projects.ListByOwner(ctx, ownerID)
	})
}

// Stats обрабатывает GET /projects/admin/stats.
func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projects.Stats(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ProjectHandler) respondList(c *gin.Context, list func(context.Context) ([]models.Project, error)) {
	projects, err := list(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) actorAndID(c *gin.Context) (*service.Principal, uuid.UUID, bool) {
	actor, err := common.CurrentPrincipal(c)
	if err != nil {
		common.Fail(c, err)
		return nil, uuid.Nil, false
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return nil, uuid.Nil, false
	}
	return actor, id, true
}

func parseAmountField(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.Validation("сумма обязательна")
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Validation("сумма должна быть числом")
	}
	return amount, nil
}

func parseDateField(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, apperror.Validation("срок проекта обязателен")
	}
	t, err := validation.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperror.Validation(err.Error())
	}
	return t, nil
}

func optionalFormValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// formDocument открывает необязательный файл формы. closeFn всегда можно вызвать.
func formDocument(c *gin.Context) (*service.Document, func(), error) {
	noop := func() {}

	header, err := c.FormFile(documentField)
	if err == http.ErrMissingFile {
		return nil, noop, nil
	}
	if err != nil {
		if strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
			return nil, noop, apperror.Validation("не удалось прочитать файл документа")
		}
		return nil, noop, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось открыть файл документа")
	}
	return &service.Document{Filename: header.Filename, Content: file}, closeFile(file), nil
}

func closeFile(f multipart.File) func() {
	return func() { _ = f.Close() }
}
