package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-house/internal/model"
)

func runRoleCheck(t *testing.T, mw echo.MiddlewareFunc, roles interface{}) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/create_admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set("roles", roles)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, mw(next)(c))
	return rec
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		roles    interface{}
		wantCode int
	}{
		{name: "admin passes", roles: model.Roles{IsAdmin: true}, wantCode: http.StatusOK},
		{name: "super admin passes", roles: model.Roles{IsSuperAdmin: true}, wantCode: http.StatusOK},
		{name: "plain user rejected", roles: model.DefaultRoles(), wantCode: http.StatusForbidden},
		{name: "missing roles rejected", roles: nil, wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := runRoleCheck(t, RequireAdmin, tt.roles)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		roles    interface{}
		wantCode int
	}{
		{name: "super admin passes", roles: model.Roles{IsSuperAdmin: true}, wantCode: http.StatusOK},
		// An ordinary admin must not be able to mint admins.
		{name: "admin rejected", roles: model.Roles{IsAdmin: true}, wantCode: http.StatusForbidden},
		{name: "plain user rejected", roles: model.DefaultRoles(), wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := runRoleCheck(t, RequireSuperAdmin, tt.roles)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	sellerOnly := RequireRole("Seller privileges required", func(r model.Roles) bool { return r.IsSeller })

	rec := runRoleCheck(t, sellerOnly, model.Roles{IsSeller: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRoleCheck(t, sellerOnly, model.Roles{IsBuyer: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seller privileges required")
}
