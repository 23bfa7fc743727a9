package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware emits one structured slog record per request:
// method, path, status, duration, response size and the request ID.
// Scrape and probe endpoints log at debug to keep the info stream
// focused on API traffic.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		path := c.Path()

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case path == "/metrics" || path == "/v1/health" || path == "/v1/ready":
			level = slog.LevelDebug
		}

		logger := slog.Default().With(
			"method", c.Method(),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", len(c.Response().Body()),
			"request_id", requestIDFrom(c),
		)
		if err != nil {
			logger = logger.With("error", err.Error())
		}
		logger.Log(c.UserContext(), level, "request")

		return err
	}
}

func requestIDFrom(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok {
		return rid
	}
	return ""
}
