// Package ws classifies a stream of frames sent over a websocket connection.
package ws

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localClientIP = "ws_client_ip"

// Handler upgrades the connection and serves it as a frame stream.
// maxFrame bounds a single image; zero leaves the library default.
func Handler(hub *Hub, analyzer Analyzer, maxFrame int64, logger *slog.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if maxFrame > 0 {
			c.SetReadLimit(maxFrame)
		}

		clientIP, _ := c.Locals(localClientIP).(string)
		session := NewSession(hub, c, analyzer, clientIP, logger)

		logger.Info("stream opened", "session_id", session.id, "ip", clientIP)
		session.Serve(context.Background())
		logger.Info("stream closed", "session_id", session.id)
	})
}

// UpgradeMiddleware rejects plain HTTP requests and keeps what the
// session needs from the upgrade request.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals(localClientIP, c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
