package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/http/handlers/common"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
	"github.com/ignatzorin/ruralfund-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	tokens   *service.TokenManager
	upgrader websocket.Upgrader
}

// NewWSHandler принимает подключения только с разрешённых origin.
// Запросы без Origin (не из браузера) пропускаются.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "access токен обязателен"))
		return
	}

	principal, err := h.tokens.Parse(rawToken)
	if err != nil {
		common.Fail(c, apperror.New(apperror.ErrCodeUnauthorized, "невалидный access токен"))
		return
	}

	// Upgrade сам пишет ответ при ошибке.
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Entry(logrus.Fields{"user_id": principal.ID}).WithError(err).Warn("ws: upgrade не удался")
		return
	}

	client := ws.NewClient(conn, h.hub, principal.ID)
	h.hub.Register(client)
	client.Run()
}
