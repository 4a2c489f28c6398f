// Package handlertest runs the API against an in-memory sqlite database for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/daemon"
	"github.com/catalog-admin/catalog-admin/internal/db"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/rbac/cache"
	"github.com/catalog-admin/catalog-admin/internal/web"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

// Password of every seeded account.
const Password = "password123"

// Env is a running API with its backing stores.
type Env struct {
	App   *fiber.App
	Deps  *handler.Deps
	Store *acl.Store
	Cache *cache.Map

	t *testing.T
}

// Result is a decoded response.
type Result struct {
	Status  int            `json:"-"`
	Cookies []*http.Cookie `json:"-"`
	Raw     []byte         `json:"-"`

	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Decode unmarshals the data field into dst.
func (r *Result) Decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst), string(r.Raw))
}

// DecodeRaw unmarshals the whole body into dst.
func (r *Result) DecodeRaw(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Raw, dst), string(r.Raw))
}

// New returns a seeded Env. Admin, manager and user log in with Password.
func New(t *testing.T) *Env {
	t.Helper()

	cfg := &config.Config{
		Title: "catalog-admin-test",
		DB:    config.DB{Engine: config.EngineSQLite, Path: ":memory:"},
		Webserver: config.Webserver{
			Session: config.Session{CookieName: "session", ExpiryTime: time.Hour},
		},
		RBAC: config.RBAC{BypassRole: auth.RoleAdmin},
		Seed: config.Seed{AdminPassword: Password, DemoUsers: true},
	}
	cfg.Log.SQLLevel = "silent"

	gdb, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, true))

	store, err := acl.New(gdb)
	require.NoError(t, err)
	require.NoError(t, daemon.Seed(context.Background(), store, cfg.Seed))

	c := cache.NewMap()
	authz := rbac.NewAuthorizer(store, c, rbac.Options{
		TTL:    time.Minute,
		Policy: rbac.Policy{BypassRole: cfg.RBAC.BypassRole},
	})

	svc, err := auth.NewService(store, authz)
	require.NoError(t, err)

	storage, err := session.NewGormStorage(gdb)
	require.NoError(t, err)

	deps := &handler.Deps{
		Cfg:       cfg,
		DB:        gdb,
		ACL:       svc,
		Authz:     authz,
		Sessions:  session.New(storage, time.Hour),
		Validator: handler.NewValidator(),
	}

	app, err := web.NewApp(deps)
	require.NoError(t, err)

	return &Env{App: app, Deps: deps, Store: store, Cache: c, t: t}
}

// Do sends a request with body encoded as JSON. A non-empty token is sent as bearer.
func (e *Env) Do(method, path, token string, body any) *Result {
	e.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)

		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.App.Test(req, fiber.TestConfig{Timeout: 10 * time.Second, FailOnTimeout: true})
	require.NoError(e.t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	res := &Result{Status: resp.StatusCode, Cookies: resp.Cookies(), Raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(e.t, json.Unmarshal(raw, res), string(raw))
	}

	return res
}

// Login returns a session token for login.
func (e *Env) Login(login string) string {
	e.t.Helper()

	res := e.Do(http.MethodPost, handler.APIPath+"/login", "", map[string]string{
		"login":    login,
		"password": Password,
	})
	require.Equal(e.t, http.StatusOK, res.Status, string(res.Raw))

	var body struct {
		Token string `json:"token"`
	}
	res.DecodeRaw(e.t, &body)
	require.NotEmpty(e.t, body.Token)

	return body.Token
}

// PermissionID returns the id of the permission name.
func (e *Env) PermissionID(name string) uint {
	e.t.Helper()

	perms, err := e.Store.ListPermissions(context.Background(), acl.PermissionFilter{})
	require.NoError(e.t, err)

	for _, p := range perms {
		if p.Name == name {
			return p.ID
		}
	}

	e.t.Fatalf("permission %q not seeded", name)

	return 0
}

// RoleID returns the id of the role name.
func (e *Env) RoleID(name string) uint {
	e.t.Helper()

	roles, err := e.Store.ListRoles(context.Background())
	require.NoError(e.t, err)

	for _, r := range roles {
		if r.Name == name {
			return r.ID
		}
	}

	e.t.Fatalf("role %q not seeded", name)

	return 0
}

// UserID returns the id of the user username.
func (e *Env) UserID(username string) uint64 {
	e.t.Helper()

	u, err := e.Store.UserByLogin(context.Background(), username)
	require.NoError(e.t, err)

	return u.ID
}
