package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметры пути являются валидными UUID.
// Использование: router.GET("/projects/project/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			raw := c.Param(name)
			if raw == "" {
				abortWithAppError(c, apperror.Validation("параметр "+name+" обязателен"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				abortWithAppError(c, apperror.Validation("параметр "+name+" должен быть валидным UUID"))
				return
			}
		}
		c.Next()
	}
}
