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

// AuthService регистрирует и авторизует все три вида учётных записей.
type AuthService interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	LoginUser(ctx context.Context, email, password string) (*service.UserAuthResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateInvestor(ctx context.Context, in service.CreateInvestorInput) (*models.Investor, error)
	LoginInvestor(ctx context.Context, email, password string) (*service.InvestorAuthResult, error)
	LoginAdmin(username, password string) (*service.AccessToken, error)
}

// AccountHandler обслуживает /api/users, /api/investors и /api/admin.
type AccountHandler struct {
	auth AuthService
}

func NewAccountHandler(auth AuthService) *AccountHandler {
	return &AccountHandler{auth: auth}
}

// CreateUser обрабатывает POST /users/create.
func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), service.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Address:    req.Address,
		Occupation: req.Occupation,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "аккаунт создан", "user": user})
}

// LoginUser обрабатывает POST /users/login.
func (h *AccountHandler) LoginUser(c *gin.Context) {
	var req dto.LoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: result.Token.Token, ExpiresAt: result.Token.ExpiresAt, User: result.User})
}

// GetUser обрабатывает GET /users/:id. Профиль доступен самому пользователю и администратору.
func (h *AccountHandler) GetUser(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}
	if _, err := common.RequireSelfOrAdmin(c, id); err != nil {
		common.Fail(c, err)
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateInvestor обрабатывает POST /investors/create.
func (h *AccountHandler) CreateInvestor(c *gin.Context) {
	var req dto.CreateInvestorRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	investor, err := h.auth.CreateInvestor(c.Request.Context(), service.CreateInvestorInput{
		Email:      req.Email,
		Password:   req.Password,
		Occupation: req.Occupation,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "инвестор зарегистрирован", "investor": investor})
}

// LoginInvestor обрабатывает POST /investors/login.
func (h *AccountHandler) LoginInvestor(c *gin.Context) {
	var req dto.LoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.LoginInvestor(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: result.Token.Token, ExpiresAt: result.Token.ExpiresAt, User: result.Investor})
}

// LoginAdmin обрабатывает POST /admin/login.
func (h *AccountHandler) LoginAdmin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	token, err := h.auth.LoginAdmin(req.Username, req.Password)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}
