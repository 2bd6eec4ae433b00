package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-house/internal/model"
)

// rolesFrom pulls the role set stored by BearerAuth.  A missing or wrongly
// typed value is treated as no roles at all.
func rolesFrom(c echo.Context) model.Roles {
	if r, ok := c.Get("roles").(model.Roles); ok {
		return r
	}
	return model.Roles{}
}

// RequireAdmin aborts with 403 unless the authenticated user holds the
// admin flag.  Super admins always pass.  It assumes BearerAuth ran first.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rolesFrom(c).Admin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin privileges required"})
		}
		return next(c)
	}
}

// RequireSuperAdmin aborts with 403 unless the authenticated user holds
// the super admin flag.  An ordinary admin does not qualify.
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rolesFrom(c).SuperAdmin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Super admin privileges required"})
		}
		return next(c)
	}
}

// RequireRole aborts with 403 unless the caller holds the given flag,
// selected by predicate.  Used for buyer/seller gates on marketplace
// endpoints.
func RequireRole(message string, pred func(model.Roles) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !pred(rolesFrom(c)) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": message})
			}
			return next(c)
		}
	}
}
