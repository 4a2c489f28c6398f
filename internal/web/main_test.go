package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/web"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/handlertest"
)

func TestNewNilDeps(t *testing.T) {
	_, err := web.New(nil)
	require.ErrorIs(t, err, handler.ErrNilDeps)

	_, err = web.NewApp(&handler.Deps{})
	require.ErrorIs(t, err, handler.ErrNilDeps)
}

func TestServiceRoutes(t *testing.T) {
	env := handlertest.New(t)

	svc, err := web.New(env.Deps)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"checkalive", web.CheckAlivePath, http.StatusOK, "OK"},
		{"metrics", web.MetricsPath, http.StatusOK, "rbac_decisions_total"},
		{"unknown route", "/api/nope", http.StatusNotFound, `"success":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// one decision so the rbac counters are exported
			env.Do(http.MethodGet, "/api/user", "", nil)

			resp, err := svc.App.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestACLRoutesRequireAdmin(t *testing.T) {
	env := handlertest.New(t)
	manager := env.Login("manager")
	admin := env.Login("admin")

	paths := []string{
		handler.ACLPath + "/roles",
		handler.ACLPath + "/permissions",
		handler.ACLPath + "/permissions/categories",
		handler.ACLPath + "/users",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.Do(http.MethodGet, p, "", nil).Status)
			assert.Equal(t, http.StatusForbidden, env.Do(http.MethodGet, p, manager, nil).Status)
			assert.Equal(t, http.StatusOK, env.Do(http.MethodGet, p, admin, nil).Status)
		})
	}
}
