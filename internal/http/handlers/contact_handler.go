package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/http/handlers/common"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

type ContactService interface {
	Submit(ctx context.Context, in service.SubmitContactInput) (*models.Contact, error)
	ListAll(ctx context.Context) ([]models.Contact, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Contact, error)
}

// ContactHandler обслуживает /api/contact.
type ContactHandler struct {
	contacts ContactService
}

func NewContactHandler(contacts ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit обрабатывает публичный POST /contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	contact, err := h.contacts.Submit(c.Request.Context(), service.SubmitContactInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		QueryType: req.QueryType,
		Message:   req.Message,
		UserID:    req.UserID,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ContactResponse{Success: true, Message: "обращение отправлено", Contact: contact})
}

// ListAll обрабатывает GET /contact/admin/all.
func (h *ContactHandler) ListAll(c *gin.Context) {
	contacts, err := h.contacts.ListAll(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// SetStatus обрабатывает PUT /contact/admin/:id.
func (h *ContactHandler) SetStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	var req dto.ContactStatusRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	contact, err := h.contacts.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ContactResponse{Success: true, Message: "статус обращения обновлён", Contact: contact})
}
