package rbac_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

func TestConstructors(t *testing.T) {
	r := rbac.AnyOf(" products.view ", "products.view", "", "products.edit")
	assert.Equal(t, rbac.KindAnyPermission, r.Kind())
	assert.Equal(t, []string{"products.view", "products.edit"}, r.Names())
	assert.Equal(t, "any:products.view|products.edit", r.String())

	assert.False(t, rbac.AllOf().Valid())
	assert.False(t, rbac.Single("").Valid())
	assert.False(t, rbac.Role(" ").Valid())
	assert.True(t, rbac.AnyOf().Valid())
	assert.Equal(t, "level>=5", rbac.MinLevel(5).String())
	assert.Equal(t, 5, rbac.MinLevel(5).Level())
	assert.Equal(t, "invalid", rbac.Requirement{}.String())

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "products.view", r.Names()[0])
}

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		kind, value string
		want        rbac.Requirement
		wantErr     bool
	}{
		{kind: "permission", value: "products.view", want: rbac.Single("products.view")},
		{kind: "single", value: "products.view", want: rbac.Single("products.view")},
		{kind: "any", value: "products.view|products.edit", want: rbac.AnyOf("products.view", "products.edit")},
		{kind: "all", value: "a|b", want: rbac.AllOf("a", "b")},
		{kind: "role", value: "Admin", want: rbac.Role("Admin")},
		{kind: "any-role", value: "Admin|Manager", want: rbac.RoleAnyOf("Admin", "Manager")},
		{kind: "level", value: "5", want: rbac.MinLevel(5)},
		{kind: "permission", value: "a|b", wantErr: true},
		{kind: "role", value: "Admin|Manager", wantErr: true},
		{kind: "level", value: "high", wantErr: true},
		{kind: "any", value: "|", wantErr: true},
		{kind: "all", value: "", wantErr: true},
		{kind: "maybe", value: "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind+" "+tt.value, func(t *testing.T) {
			got, err := rbac.ParseRequirement(tt.kind, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, rbac.ErrInvalidRequirement)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubjectJSON(t *testing.T) {
	s := rbac.NewSubject(9, "Manager", 5, []string{"b", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, s.Permissions())

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":9,"role":"Manager","level":5,"permissions":["a","b"]}`, string(b))

	var back rbac.Subject
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s, back)
	assert.True(t, back.Has("a"))
	assert.False(t, back.Has("c"))
}
