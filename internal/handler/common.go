package handler // handler implements the HTTP endpoints of the marketplace API

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUserID extracts the numeric user id stored by the auth middleware.
func currentUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("missing user_id in context")
}

// currentRoles extracts the role set stored by the auth middleware.
func currentRoles(c echo.Context) model.Roles {
	if r, ok := c.Get("roles").(model.Roles); ok {
		return r
	}
	return model.Roles{}
}

// httpError is the single place where domain errors become HTTP responses.
// notFoundMsg names the entity for the 404 case; everything unclassified
// is logged server-side and answered with a generic 500 so internal error
// text never reaches clients.
func httpError(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFoundMsg})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Permission denied"})
	case errors.Is(err, repository.ErrUserExists), errors.Is(err, repository.ErrItemExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		logrus.WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
}
