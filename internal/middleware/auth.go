package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/auction-house/internal/auth"
)

// TokenValidator is the slice of the auth package the gate needs.  Keeping
// it an interface lets tests stub validation without a database.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (auth.Identity, error)
}

// BearerAuth returns an Echo middleware that enforces the Authorization
// header contract and resolves the caller's identity before any protected
// handler runs.  The header must be exactly "Bearer <token>" (two fields,
// case-insensitive scheme); anything else is rejected without ever
// reaching the validator.
//
// On success the resolved identity is stored in the request context under
// "user_id", "public_id", "username" and "roles".  On any validator
// failure the request short-circuits with 401 and the wrapped handler is
// never invoked.  Infrastructure faults surface as a generic 500 so
// internal details never leak to clients.
func BearerAuth(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrMissingAuthHeader.Error()})
			}
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrMalformedAuthHeader.Error()})
			}

			ident, err := v.Validate(c.Request().Context(), parts[1])
			if err != nil {
				if auth.IsAuthError(err) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
				}
				logrus.WithError(err).Error("token validation failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}

			c.Set("user_id", ident.UserID)
			c.Set("public_id", ident.PublicID)
			c.Set("username", ident.Username)
			c.Set("roles", ident.Roles)
			return next(c)
		}
	}
}
