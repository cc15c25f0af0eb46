// Package middleware provides echo middleware for authentication and
// request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsandh/splitbook/internal/auth"
)

const (
	// userIDKey is the echo context key for the authenticated user ID.
	userIDKey = "user_id"
	// emailKey is the echo context key for the authenticated user's email.
	emailKey = "email"
)

// UserID extracts the authenticated user ID from the request context.
// Returns empty string if not set.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// Email extracts the authenticated user's email from the request context.
// Returns empty string if not set.
func Email(c echo.Context) string {
	email, _ := c.Get(emailKey).(string)
	return email
}

// RequireAuth returns middleware that validates Bearer JWT tokens and
// stores the user ID and email on the request context.
func RequireAuth(jwtManager *auth.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrMissingToken.Error())
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			}

			c.Set(userIDKey, claims.UserID)
			c.Set(emailKey, claims.Email)
			return next(c)
		}
	}
}
