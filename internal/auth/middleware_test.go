package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/rbac/cache"
)

type stubEnforcer struct {
	decision rbac.Decision
	err      error

	gotUser uint64
	gotReq  rbac.Requirement
}

func (s *stubEnforcer) Enforce(_ context.Context, userID uint64, req rbac.Requirement) (rbac.Decision, error) {
	s.gotUser, s.gotReq = userID, req
	return s.decision, s.err
}

func newProtectedApp(userID uint64, guard fiber.Handler) *fiber.App {
	app := fiber.New()

	app.Use(func(c fiber.Ctx) error {
		if userID != 0 {
			c.Locals(auth.UserIDKey, userID)
		}

		return c.Next()
	})

	app.Get("/protected", guard, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint64
		enforcer   *stubEnforcer
		wantStatus int
		wantBody   *auth.DenyResponse
	}{
		{
			name:       "granted",
			userID:     7,
			enforcer:   &stubEnforcer{decision: rbac.Decision{Granted: true}},
			wantStatus: fiber.StatusOK,
		},
		{
			name:   "unauthenticated",
			userID: 0,
			enforcer: &stubEnforcer{
				decision: rbac.Decision{Reason: rbac.ReasonUnauthenticated},
				err:      rbac.ErrUnauthenticated,
			},
			wantStatus: fiber.StatusUnauthorized,
			wantBody:   &auth.DenyResponse{Error: "Unauthorized", Message: rbac.ReasonUnauthenticated},
		},
		{
			name:       "denied",
			userID:     7,
			enforcer:   &stubEnforcer{decision: rbac.Decision{Reason: rbac.ReasonInsufficientPermissions}},
			wantStatus: fiber.StatusForbidden,
			wantBody:   &auth.DenyResponse{Error: "Unauthorized", Message: rbac.ReasonInsufficientPermissions},
		},
		{
			name:   "storage failure fails closed",
			userID: 7,
			enforcer: &stubEnforcer{
				decision: rbac.Decision{Reason: rbac.ReasonUnavailable},
				err:      errors.New("db down"),
			},
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   &auth.DenyResponse{Error: "Internal Server Error", Message: rbac.ReasonUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.userID, auth.RequirePermission(tt.enforcer, "products.view"))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.userID, tt.enforcer.gotUser)
			assert.Equal(t, rbac.KindPermission, tt.enforcer.gotReq.Kind())

			if tt.wantBody == nil {
				return
			}

			var body auth.DenyResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, *tt.wantBody, body)
		})
	}
}

func TestRequireHelpersBuildRequirements(t *testing.T) {
	e := &stubEnforcer{decision: rbac.Decision{Granted: true}}

	tests := []struct {
		name  string
		guard fiber.Handler
		want  string
	}{
		{"any permission", auth.RequireAnyPermission(e, "a", "b"), "any:a|b"},
		{"all permissions", auth.RequireAllPermissions(e, "a", "b"), "all:a|b"},
		{"role", auth.RequireRole(e, auth.RoleAdmin), "role:Admin"},
		{"any role", auth.RequireAnyRole(e, auth.RoleAdmin, auth.RoleManager), "any-role:Admin|Manager"},
		{"level", auth.RequireLevel(e, 5), "level>=5"},
		{"authenticated", auth.RequireAuthenticated(e), "level>=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(1, tt.guard)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, e.gotReq.String())
		})
	}
}

func TestRequireWithAuthorizer(t *testing.T) {
	authz := rbac.NewAuthorizer(staticStore{
		1: rbac.NewSubject(1, auth.RoleManager, 5, []string{auth.PermProductsView}),
		2: rbac.NewSubject(2, auth.RoleAdmin, 10, nil),
	}, cache.NewMap(), rbac.Options{Policy: rbac.Policy{BypassRole: auth.RoleAdmin}})

	tests := []struct {
		name   string
		userID uint64
		guard  fiber.Handler
		want   int
	}{
		{"manager may view", 1, auth.RequirePermission(authz, auth.PermProductsView), fiber.StatusOK},
		{"manager may not delete", 1, auth.RequirePermission(authz, auth.PermProductsDelete), fiber.StatusForbidden},
		{"manager below level", 1, auth.RequireLevel(authz, 10), fiber.StatusForbidden},
		{"admin bypasses", 2, auth.RequirePermission(authz, auth.PermSystemLogs), fiber.StatusOK},
		{"unknown user", 3, auth.RequireLevel(authz, 0), fiber.StatusUnauthorized},
		{"anonymous", 0, auth.RequireLevel(authz, 0), fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.userID, tt.guard)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
