package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/ruralfund-backend/internal/dto"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
)

// RateLimitMiddleware ограничивает число запросов с одного IP.
// По умолчанию: 10 запросов в минуту. Каждый вызов создаёт свой счётчик.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		state, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Entry(logrus.Fields{"path": c.FullPath()}).WithError(err).Error("rate limit: хранилище недоступно")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", state.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", state.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", state.Reset))

		if state.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}
