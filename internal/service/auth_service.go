package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
	"github.com/ignatzorin/ruralfund-backend/internal/models"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/validation"
)

// UserRepository описывает зависимости AuthService от таблицы users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// InvestorRepository описывает хранилище отдельных учётных записей инвесторов.
type InvestorRepository interface {
	Create(ctx context.Context, investor *models.Investor) error
	GetByEmail(ctx context.Context, email string) (*models.Investor, error)
}

// AdminCredentials берутся из конфигурации.
type AdminCredentials struct {
	Username string
	Password string
}

// AuthService отвечает за регистрацию и вход пользователей, инвесторов и администратора.
type AuthService struct {
	users     UserRepository
	investors InvestorRepository
	tokens    *TokenManager

	adminUsername string
	adminHash     []byte
	adminID       uuid.UUID
}

type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Phone      *string
	Address    *string
	Occupation *string
}

type CreateInvestorInput struct {
	Email      string
	Password   string
	Occupation string
}

// UserAuthResult возвращается после входа пользователя.
type UserAuthResult struct {
	User  *models.User
	Token *AccessToken
}

// InvestorAuthResult возвращается после входа инвестора.
type InvestorAuthResult struct {
	Investor *models.Investor
	Token    *AccessToken
}

// NewAuthService хеширует пароль администратора один раз при старте.
func NewAuthService(users UserRepository, investors InvestorRepository, tokens *TokenManager, admin AdminCredentials) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль администратора: %w", err)
	}

	return &AuthService{
		users:         users,
		investors:     investors,
		tokens:        tokens,
		adminUsername: admin.Username,
		adminHash:     hash,
		adminID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("admin:"+admin.Username)),
	}, nil
}

// CreateUser регистрирует владельца проекта или инвестора-пользователя.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        validation.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Address:      in.Address,
		Occupation:   in.Occupation,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Entry(map[string]interface{}{"user_id": user.ID}).Info("auth service: пользователь зарегистрирован")
	return user, nil
}

// LoginUser: неизвестный email даёт 404, неверный пароль 401.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*UserAuthResult, error) {
	if err := validation.ValidateNonEmpty("email", email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateNonEmpty("пароль", password); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Principal{ID: user.ID, Role: valueobject.RoleUser, Name: user.Name})
	if err != nil {
		return nil, err
	}
	return &UserAuthResult{User: user, Token: token}, nil
}

// GetUser возвращает пользователя без хеша пароля в ответе.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateInvestor регистрирует отдельную учётную запись инвестора.
func (s *AuthService) CreateInvestor(ctx context.Context, in CreateInvestorInput) (*models.Investor, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateNonEmpty("род занятий", in.Occupation); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	investor := &models.Investor{
		Email:        validation.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		Occupation:   strings.TrimSpace(in.Occupation),
	}
	if err := s.investors.Create(ctx, investor); err != nil {
		return nil, err
	}
	return investor, nil
}

func (s *AuthService) LoginInvestor(ctx context.Context, email, password string) (*InvestorAuthResult, error) {
	if err := validation.ValidateNonEmpty("email", email); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	investor, err := s.investors.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(investor.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Principal{ID: investor.ID, Role: valueobject.RoleInvestor, Name: investor.Email})
	if err != nil {
		return nil, err
	}
	return &InvestorAuthResult{Investor: investor, Token: token}, nil
}

// LoginAdmin сверяет учётные данные с конфигурацией.
func (s *AuthService) LoginAdmin(username, password string) (*AccessToken, error) {
	if username != s.adminUsername {
		// bcrypt выполняется и для неизвестного логина.
		_ = bcrypt.CompareHashAndPassword(s.adminHash, []byte(password))
		return nil, apperror.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.tokens.Issue(Principal{ID: s.adminID, Role: valueobject.RoleAdmin, Name: s.adminUsername})
}
