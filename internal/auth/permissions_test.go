package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/auth"
)

func TestDefaultPermissions(t *testing.T) {
	perms := auth.DefaultPermissions()
	require.Len(t, perms, 22)

	seen := map[string]bool{}
	for _, p := range perms {
		assert.False(t, seen[p.Name], "duplicate %s", p.Name)
		assert.NotEmpty(t, p.Category, p.Name)
		seen[p.Name] = true
	}
}

func TestDefaultRoleGrants(t *testing.T) {
	perms := auth.DefaultPermissions()

	granted := map[string][]string{}

	for _, r := range auth.DefaultRoles() {
		for _, p := range perms {
			if r.Grants(p) {
				granted[r.Name] = append(granted[r.Name], p.Name)
			}
		}
	}

	assert.Len(t, granted[auth.RoleAdmin], 22)

	assert.Len(t, granted[auth.RoleManager], 8)
	assert.Contains(t, granted[auth.RoleManager], auth.PermProductsDelete)
	assert.NotContains(t, granted[auth.RoleManager], auth.PermUsersView)
	assert.NotContains(t, granted[auth.RoleManager], auth.PermSystemSettings)

	assert.ElementsMatch(t, []string{
		auth.PermUsersView, auth.PermRolesView, auth.PermPermissionsView,
		auth.PermProductsView, auth.PermCategoriesView,
	}, granted[auth.RoleUser])
}
