package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

func TestEvaluate(t *testing.T) {
	manager := rbac.NewSubject(2, "Manager", 5, []string{
		"products.view", "products.create", "products.edit", "categories.view",
	})
	unbound := rbac.NewSubject(3, "", 0, nil)

	tests := []struct {
		name    string
		subject rbac.Subject
		req     rbac.Requirement
		granted bool
		reason  string
	}{
		{name: "single held", subject: manager, req: rbac.Single("products.create"), granted: true},
		{
			name: "single missing", subject: manager, req: rbac.Single("products.delete"),
			reason: rbac.ReasonInsufficientPermissions,
		},
		{name: "any one held", subject: manager, req: rbac.AnyOf("users.view", "products.view"), granted: true},
		{
			name: "any none held", subject: manager, req: rbac.AnyOf("users.view", "roles.view"),
			reason: rbac.ReasonInsufficientPermissions,
		},
		{
			name: "any empty denies", subject: manager, req: rbac.AnyOf(),
			reason: rbac.ReasonInsufficientPermissions,
		},
		{name: "all held", subject: manager, req: rbac.AllOf("products.view", "products.edit"), granted: true},
		{
			name: "all partially held", subject: manager, req: rbac.AllOf("products.view", "products.delete"),
			reason: rbac.ReasonInsufficientPermissions,
		},
		{
			name: "all empty is invalid", subject: manager, req: rbac.AllOf(),
			reason: rbac.ReasonInvalidRequirement,
		},
		{name: "role equal", subject: manager, req: rbac.Role("Manager"), granted: true},
		{name: "role other", subject: manager, req: rbac.Role("Admin"), reason: rbac.ReasonInsufficientRoleLevel},
		{name: "role any of", subject: manager, req: rbac.RoleAnyOf("Admin", "Manager"), granted: true},
		{name: "role any of miss", subject: manager, req: rbac.RoleAnyOf("Admin"), reason: rbac.ReasonInsufficientRoleLevel},
		{name: "level equal", subject: manager, req: rbac.MinLevel(5), granted: true},
		{name: "level below", subject: manager, req: rbac.MinLevel(6), reason: rbac.ReasonInsufficientRoleLevel},
		{name: "zero requirement", subject: manager, req: rbac.Requirement{}, reason: rbac.ReasonInvalidRequirement},
		{name: "empty single", subject: manager, req: rbac.Single("  "), reason: rbac.ReasonInvalidRequirement},
		{
			name: "unbound user has nothing", subject: unbound, req: rbac.Single("products.view"),
			reason: rbac.ReasonInsufficientPermissions,
		},
		{name: "unbound user has level 0", subject: unbound, req: rbac.MinLevel(1), reason: rbac.ReasonInsufficientRoleLevel},
		{name: "unbound user meets level 0", subject: unbound, req: rbac.MinLevel(0), granted: true},
		{name: "unbound user has no role", subject: unbound, req: rbac.RoleAnyOf("Admin", "Manager", "User"), reason: rbac.ReasonInsufficientRoleLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rbac.Evaluate(tt.subject, tt.req)
			assert.Equal(t, tt.granted, d.Granted)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

// TestEvaluateSetSemantics checks the decision rules against every subset of a
// small universe of permissions.
func TestEvaluateSetSemantics(t *testing.T) {
	universe := []string{"a.view", "a.edit", "b.view", "b.edit"}

	subsets := func() [][]string {
		var out [][]string

		for mask := range 1 << len(universe) {
			var s []string

			for i, p := range universe {
				if mask&(1<<i) != 0 {
					s = append(s, p)
				}
			}

			out = append(out, s)
		}

		return out
	}()

	contains := func(set []string, p string) bool {
		for _, x := range set {
			if x == p {
				return true
			}
		}

		return false
	}

	for _, held := range subsets {
		s := rbac.NewSubject(1, "R", 1, held)

		for _, p := range universe {
			assert.Equal(t, contains(held, p), rbac.Evaluate(s, rbac.Single(p)).Granted)
		}

		for _, req := range subsets {
			if len(req) == 0 {
				continue
			}

			anyHeld, allHeld := false, true

			for _, p := range req {
				if contains(held, p) {
					anyHeld = true
				} else {
					allHeld = false
				}
			}

			assert.Equal(t, anyHeld, rbac.Evaluate(s, rbac.AnyOf(req...)).Granted, "any %v of %v", req, held)
			assert.Equal(t, allHeld, rbac.Evaluate(s, rbac.AllOf(req...)).Granted, "all %v of %v", req, held)
		}
	}
}

func TestEvaluateLevelMonotonic(t *testing.T) {
	for level := 0; level <= 10; level++ {
		s := rbac.NewSubject(1, "R", level, nil)

		for want := 0; want <= 11; want++ {
			assert.Equal(t, level >= want, rbac.Evaluate(s, rbac.MinLevel(want)).Granted, "level %d min %d", level, want)
		}
	}
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, rbac.Decision{Granted: true}.Err())
	assert.ErrorIs(t, rbac.Decision{Reason: rbac.ReasonInsufficientPermissions}.Err(), rbac.ErrPermissionDenied)
	assert.ErrorIs(t, rbac.Decision{Reason: rbac.ReasonUnauthenticated}.Err(), rbac.ErrUnauthenticated)
}

func TestPolicy(t *testing.T) {
	p := rbac.Policy{BypassRole: "Admin"}

	assert.True(t, p.Bypasses(rbac.NewSubject(1, "Admin", 10, nil)))
	assert.False(t, p.Bypasses(rbac.NewSubject(1, "Admin", 0, nil)), "inactive role")
	assert.False(t, p.Bypasses(rbac.NewSubject(1, "Manager", 5, nil)))
	assert.False(t, rbac.Policy{}.Bypasses(rbac.NewSubject(1, "", 0, nil)))
}
