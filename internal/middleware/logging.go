package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger returns middleware that logs every request with method,
// path, status, the authenticated user and duration.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"user_id", UserID(c),
				"email", Email(c),
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case status >= 500:
				slog.Error("request failed", attrs...)
			case status >= 400:
				slog.Warn("request rejected", attrs...)
			default:
				slog.Info("request completed", attrs...)
			}

			return err
		}
	}
}
