package common

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/http/middleware"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

// CurrentPrincipal извлекает владельца токена из контекста.
func CurrentPrincipal(c *gin.Context) (*service.Principal, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return principal, nil
}

// ParseUUIDParam разбирает UUID из параметра пути.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, apperror.Validation(fmt.Sprintf("параметр %s отсутствует", paramName))
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, apperror.Validation(fmt.Sprintf("параметр %s должен быть валидным UUID", paramName))
	}
	return parsed, nil
}

// BindJSON разбирает тело запроса; ошибка биндинга становится ошибкой валидации.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное тело запроса: "+err.Error())
	}
	return nil
}

// Fail передаёт ошибку в ErrorHandler и прерывает цепочку.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// RequireSelfOrAdmin пропускает владельца ресурса и администратора.
func RequireSelfOrAdmin(c *gin.Context, ownerID uuid.UUID) (*service.Principal, error) {
	principal, err := CurrentPrincipal(c)
	if err != nil {
		return nil, err
	}
	if principal.Role != valueobject.RoleAdmin && principal.ID != ownerID {
		return nil, apperror.ErrForbidden
	}
	return principal, nil
}
