package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// ErrorHandler отвечает за ошибки, приложенные хэндлерами через c.Error.
// AppError отдаётся клиенту как есть, остальные маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := apperror.As(err); ok && appErr.Code != apperror.ErrCodeInternal {
			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
			return
		}

		logger.Entry(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).WithError(err).Error("Request error")

		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "внутренняя ошибка сервера",
			Code:  string(apperror.ErrCodeInternal),
		})
	}
}
