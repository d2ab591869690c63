package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "artisanmarket/internal/infrastructure/websocket"
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/errors"
	"artisanmarket/pkg/logger"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	sessionUseCase *usecase.SessionUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict to the storefront origin in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, sessionUseCase *usecase.SessionUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		sessionUseCase: sessionUseCase,
	}
}

// HandleWebSocket upgrades the connection and opens the user's negotiation
// session: stores loaded, bridge subscribed. The session is torn down with
// the connection so a later sign-in always starts from clean stores.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	_, bridge, err := h.sessionUseCase.Open(c.Request().Context(), userID)
	if err != nil {
		logger.Error("Failed to open negotiation session for %s: %v", userID, err)
		return errors.Internal("Failed to open negotiation session", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.sessionUseCase.Close(userID, bridge)
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		OnClose: func() {
			h.sessionUseCase.Close(userID, bridge)
		},
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
