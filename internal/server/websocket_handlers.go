package server

import (
	"context"

	"pixelfeed/internal/middleware"
	"pixelfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades GET /api/ws and streams the caller's notifications.
// AuthRequired runs first; a caller that has not synced a user record is refused.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		subject, _ := conn.Locals(middleware.LocalSubject).(string)

		user, err := s.userService.ResolveSubject(context.Background(), subject)
		if err != nil {
			middleware.Logger.Warn("websocket: unknown subject", "subject", subject, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(user.ID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket: register failed", "user_id", user.ID.String(), "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				&models.AppError{Code: models.CodeInternal, Message: "Realtime notifications unavailable"})
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
