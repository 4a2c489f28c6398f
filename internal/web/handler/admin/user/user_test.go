package user_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/admin/user"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/handlertest"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/login"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/product"
)

func userPath(id uint64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", user.Path, id, suffix)
}

func TestUserList(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("admin")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"admin", "manager", "user"}},
		{"search", "?search=manager", []string{"manager"}},
		{"by role", fmt.Sprintf("?role_id=%d", env.RoleID(auth.RoleUser)), []string{"user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Do(http.MethodGet, user.Path+tt.query, token, nil)
			require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

			var users []models.User
			res.Decode(t, &users)

			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.Username)
				assert.NotNil(t, u.Role)
			}

			assert.Equal(t, tt.want, names)
			assert.NotContains(t, string(res.Raw), "argon2id")
		})
	}

	res := env.Do(http.MethodGet, user.Path+"?role_id=x", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
}

func TestUserCRUD(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("admin")

	res := env.Do(http.MethodPost, user.Path, token, map[string]any{
		"name":                  "Clerk",
		"username":              "clerk",
		"email":                 "clerk@example.com",
		"password":              "clerkpass",
		"password_confirmation": "clerkpass",
		"role_id":               env.RoleID(auth.RoleUser),
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	var u models.User
	res.Decode(t, &u)
	require.NotNil(t, u.Role)
	assert.Equal(t, auth.RoleUser, u.Role.Name)
	assert.True(t, u.Active)

	// the new account can log in with its password
	res = env.Do(http.MethodPost, login.Path, "", map[string]string{"login": "clerk", "password": "clerkpass"})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	res = env.Do(http.MethodPut, userPath(u.ID, ""), token, map[string]any{
		"name":                  "Senior Clerk",
		"password":              "newpassword",
		"password_confirmation": "newpassword",
	})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	res.Decode(t, &u)
	assert.Equal(t, "Senior Clerk", u.Name)
	assert.Equal(t, "clerk", u.Username)

	res = env.Do(http.MethodPost, login.Path, "", map[string]string{"login": "clerk", "password": "newpassword"})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	res = env.Do(http.MethodGet, userPath(u.ID, ""), token, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = env.Do(http.MethodDelete, userPath(u.ID, ""), token, nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	assert.Equal(t, http.StatusNotFound, env.Do(http.MethodGet, userPath(u.ID, ""), token, nil).Status)
}

func TestUserValidation(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("admin")

	valid := func(overrides map[string]any) map[string]any {
		body := map[string]any{
			"username":              "clerk",
			"email":                 "clerk@example.com",
			"password":              "clerkpass",
			"password_confirmation": "clerkpass",
		}
		for k, v := range overrides {
			body[k] = v
		}

		return body
	}

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantField  string
	}{
		{"taken username", valid(map[string]any{"username": "manager"}), http.StatusConflict, ""},
		{"taken email", valid(map[string]any{"email": "user@example.com"}), http.StatusConflict, ""},
		{"bad email", valid(map[string]any{"email": "nope"}), http.StatusUnprocessableEntity, "email"},
		{"mismatch", valid(map[string]any{"password_confirmation": "other"}), http.StatusUnprocessableEntity, "password_confirmation"},
		{"unknown role", valid(map[string]any{"role_id": 9999}), http.StatusUnprocessableEntity, "role_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Do(http.MethodPost, user.Path, token, tt.body)
			require.Equal(t, tt.wantStatus, res.Status, string(res.Raw))

			if tt.wantField != "" {
				assert.Contains(t, res.Errors, tt.wantField)
			}
		})
	}
}

func TestUserCannotDeleteSelf(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("admin")

	res := env.Do(http.MethodDelete, userPath(env.UserID("admin"), ""), token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status, string(res.Raw))
}

func TestUserRoleBinding(t *testing.T) {
	env := handlertest.New(t)
	admin := env.Login("admin")
	viewer := env.Login("user")
	viewerID := env.UserID("user")

	// a viewer may list but not create products
	require.Equal(t, http.StatusOK, env.Do(http.MethodGet, product.Path, viewer, nil).Status)

	newProduct := map[string]any{"sku": "SKU-1", "name": "Widget", "price_cents": 100}
	require.Equal(t, http.StatusForbidden, env.Do(http.MethodPost, product.Path, viewer, newProduct).Status)

	res := env.Do(http.MethodPost, userPath(viewerID, "/assign-role"), admin, map[string]any{
		"role_id": env.RoleID(auth.RoleManager),
	})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	assert.False(t, env.Cache.Has(rbac.SubjectKey(viewerID)))

	require.Equal(t, http.StatusCreated, env.Do(http.MethodPost, product.Path, viewer, newProduct).Status)

	res = env.Do(http.MethodGet, userPath(viewerID, "/permissions"), admin, nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	var p handler.Profile
	res.Decode(t, &p)
	assert.Equal(t, auth.RoleManager, p.Role)
	assert.Equal(t, 5, p.RoleLevel)
	assert.Contains(t, p.Permissions, auth.PermProductsCreate)

	res = env.Do(http.MethodDelete, userPath(viewerID, "/remove-role"), admin, nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	var u models.User
	res.Decode(t, &u)
	assert.Nil(t, u.RoleID)

	// without a role nothing is granted, but the session stays valid
	assert.Equal(t, http.StatusForbidden, env.Do(http.MethodGet, product.Path, viewer, nil).Status)
	assert.Equal(t, http.StatusOK, env.Do(http.MethodGet, "/api/user", viewer, nil).Status)

	res = env.Do(http.MethodPost, userPath(viewerID, "/assign-role"), admin, map[string]any{"role_id": 9999})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)

	res = env.Do(http.MethodPost, userPath(9999, "/assign-role"), admin, map[string]any{
		"role_id": env.RoleID(auth.RoleUser),
	})
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestUserDeactivationEndsAccess(t *testing.T) {
	env := handlertest.New(t)
	admin := env.Login("admin")
	manager := env.Login("manager")

	require.Equal(t, http.StatusOK, env.Do(http.MethodGet, product.Path, manager, nil).Status)

	res := env.Do(http.MethodPut, userPath(env.UserID("manager"), ""), admin, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	assert.Equal(t, http.StatusUnauthorized, env.Do(http.MethodGet, product.Path, manager, nil).Status)

	res = env.Do(http.MethodGet, userPath(env.UserID("manager"), "/permissions"), admin, nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	var p handler.Profile
	res.Decode(t, &p)
	assert.False(t, p.Active)
	assert.Empty(t, p.Permissions)
}
