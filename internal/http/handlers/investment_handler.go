package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/http/handlers/common"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvestmentService interface {
	Create(ctx context.Context, actor *service.Principal, in service.CreateInvestmentInput) (*models.Investment, error)
	Review(ctx context.Context, actor *service.Principal, id uuid.UUID, in service.ReviewInvestmentInput) (*models.Investment, error)
	ListAll(ctx context.Context) ([]models.InvestmentView, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]models.InvestmentView, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.InvestmentView, error)
}

// ProjectGetter нужен для проверки владельца проекта.
type ProjectGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type InvestmentExporter interface {
	WriteInvestments(ctx context.Context, w io.Writer) error
}

// InvestmentHandler обслуживает /api/investments.
type InvestmentHandler struct {
	investments InvestmentService
	projects    ProjectGetter
	exporter    InvestmentExporter
	now         func() time.Time
}

func NewInvestmentHandler(investments InvestmentService, projects ProjectGetter, exporter InvestmentExporter) *InvestmentHandler {
	return &InvestmentHandler{
		investments: investments,
		projects:    projects,
		exporter:    exporter,
		now:         time.Now,
	}
}

// Create обрабатывает POST /investments/create.
func (h *InvestmentHandler) Create(c *gin.Context) {
	actor, err := common.CurrentPrincipal(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	var req dto.CreateInvestmentRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	inv, err := h.investments.Create(c.Request.Context(), actor, service.CreateInvestmentInput{
		Amount:    req.Amount,
		ProjectID: req.ProjectID,
		BankDetails: models.BankDetails{
			AccountNumber:     req.BankDetails.AccountNumber,
			BankName:          req.BankDetails.BankName,
			BankBranch:        req.BankDetails.BankBranch,
			IFSCCode:          req.BankDetails.IFSCCode,
			AccountHolderName: req.BankDetails.AccountHolderName,
		},
		PersonalDetails: models.PersonalDetails{
			PANNumber:    req.PersonalDetails.PANNumber,
			AadharNumber: req.PersonalDetails.AadharNumber,
		},
		InvestmentReason: req.InvestmentReason,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.InvestmentResponse{Success: true, Message: "заявка на инвестицию создана", Investment: inv})
}

// Review обрабатывает PUT /investments/admin/:id.
func (h *InvestmentHandler) Review(c *gin.Context) {
	actor, err := common.CurrentPrincipal(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	var req dto.ReviewRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	inv, err := h.investments.Review(c.Request.Context(), actor, id, service.ReviewInvestmentInput{
		Action:          req.Action,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.InvestmentResponse{Success: true, Message: "заявка обновлена", Investment: inv})
}

// ListAll обрабатывает GET /investments/admin/all.
func (h *InvestmentHandler) ListAll(c *gin.Context) {
	views, err := h.investments.ListAll(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListByInvestor обрабатывает GET /investments/investor/:id.
func (h *InvestmentHandler) ListByInvestor(c *gin.Context) {
	investorID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	if _, err := common.RequireSelfOrAdmin(c, investorID); err != nil {
		common.Fail(c, err)
		return
	}

	views, err := h.investments.ListByInvestor(c.Request.Context(), investorID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListByProject обрабатывает GET /investments/project/:id. Доступно владельцу проекта и администратору.
func (h *InvestmentHandler) ListByProject(c *gin.Context) {
	actor, err := common.CurrentPrincipal(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	if actor.Role != valueobject.RoleAdmin {
		project, err := h.projects.Get(c.Request.Context(), projectID)
		if err != nil {
			common.Fail(c, err)
			return
		}
		if project.OwnerID != actor.ID {
			common.Fail(c, apperror.ErrForbidden)
			return
		}
	}

	views, err := h.investments.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Export обрабатывает GET /investments/admin/export: xlsx со всеми заявками.
func (h *InvestmentHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exporter.WriteInvestments(c.Request.Context(), &buf); err != nil {
		common.Fail(c, err)
		return
	}

	filename := fmt.Sprintf("investments-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
