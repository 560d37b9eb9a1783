package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/ruralfund-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
)

// ContextPrincipalKey: ключ *service.Principal в gin.Context.
const ContextPrincipalKey = "principal"

// AuthMiddleware проверяет JWT access токен из заголовка Authorization.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			abortWithAppError(c, apperror.ErrUnauthorized)
			return
		}

		principal, err := tokens.Parse(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			abortWithAppError(c, apperror.New(apperror.ErrCodeUnauthorized, "токен невалиден"))
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

// RequireRole пропускает только владельцев токена с одной из ролей.
// Ставится после AuthMiddleware.
func RequireRole(roles ...valueobject.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			abortWithAppError(c, apperror.ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abortWithAppError(c, apperror.ErrForbidden)
	}
}

// PrincipalFrom достаёт владельца токена, положенного AuthMiddleware.
func PrincipalFrom(c *gin.Context) (*service.Principal, bool) {
	raw, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := raw.(*service.Principal)
	return principal, ok && principal != nil
}

func abortWithAppError(c *gin.Context, err *apperror.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, dto.ErrorResponse{Error: err.Message, Code: string(err.Code)})
}
