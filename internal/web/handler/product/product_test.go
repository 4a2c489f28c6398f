package product_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/category"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/handlertest"
	"github.com/catalog-admin/catalog-admin/internal/web/handler/product"
)

func productPath(id uint) string {
	return fmt.Sprintf("%s/%d", product.Path, id)
}

func TestProductPermissions(t *testing.T) {
	env := handlertest.New(t)

	tokens := map[string]string{
		"admin":   env.Login("admin"),
		"manager": env.Login("manager"),
		"user":    env.Login("user"),
	}

	body := func(sku string) map[string]any {
		return map[string]any{"sku": sku, "name": "Widget " + sku, "price_cents": 1999}
	}

	tests := []struct {
		name   string
		login  string
		method string
		body   map[string]any
		want   int
	}{
		{"anonymous list", "", http.MethodGet, nil, http.StatusUnauthorized},
		{"user list", "user", http.MethodGet, nil, http.StatusOK},
		{"user create", "user", http.MethodPost, body("U-1"), http.StatusForbidden},
		{"manager create", "manager", http.MethodPost, body("M-1"), http.StatusCreated},
		{"admin create", "admin", http.MethodPost, body("A-1"), http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b any
			if tt.body != nil {
				b = tt.body
			}

			res := env.Do(tt.method, product.Path, tokens[tt.login], b)
			assert.Equal(t, tt.want, res.Status, string(res.Raw))
		})
	}
}

func TestProductCRUD(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("manager")

	res := env.Do(http.MethodPost, category.Path, token, map[string]any{"name": "Tools"})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	var cat models.Category
	res.Decode(t, &cat)

	res = env.Do(http.MethodPost, product.Path, token, map[string]any{
		"sku":         "HAM-1",
		"name":        "Hammer",
		"description": "Claw hammer",
		"price_cents": 2500,
		"category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	var p models.Product
	res.Decode(t, &p)
	assert.True(t, p.Active)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Tools", p.Category.Name)

	res = env.Do(http.MethodPost, product.Path, token, map[string]any{"sku": "SAW-1", "name": "Saw", "price_cents": 3000})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 2},
		{"by category", fmt.Sprintf("?category_id=%d", cat.ID), 1},
		{"search", "?search=saw", 1},
		{"no match", "?search=drill", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Do(http.MethodGet, product.Path+tt.query, token, nil)
			require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

			var products []models.Product
			if len(res.Data) > 0 {
				res.Decode(t, &products)
			}

			assert.Len(t, products, tt.want)
		})
	}

	res = env.Do(http.MethodPut, productPath(p.ID), token, map[string]any{
		"sku":         "HAM-1",
		"name":        "Hammer XL",
		"price_cents": 2999,
		"active":      false,
	})
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	res.Decode(t, &p)
	assert.Equal(t, "Hammer XL", p.Name)
	assert.Nil(t, p.CategoryID)
	assert.False(t, p.Active)

	res = env.Do(http.MethodGet, productPath(p.ID), token, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = env.Do(http.MethodDelete, productPath(p.ID), token, nil)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))

	assert.Equal(t, http.StatusNotFound, env.Do(http.MethodGet, productPath(p.ID), token, nil).Status)
	assert.Equal(t, http.StatusNotFound, env.Do(http.MethodDelete, productPath(p.ID), token, nil).Status)
}

func TestProductValidation(t *testing.T) {
	env := handlertest.New(t)
	token := env.Login("admin")

	res := env.Do(http.MethodPost, product.Path, token, map[string]any{"sku": "DUP", "name": "First"})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantField  string
	}{
		{"duplicate sku", map[string]any{"sku": "DUP", "name": "Second"}, http.StatusConflict, ""},
		{"missing name", map[string]any{"sku": "X"}, http.StatusUnprocessableEntity, "name"},
		{"negative price", map[string]any{"sku": "X", "name": "X", "price_cents": -1}, http.StatusUnprocessableEntity, "price_cents"},
		{"unknown category", map[string]any{"sku": "X", "name": "X", "category_id": 9999}, http.StatusUnprocessableEntity, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.Do(http.MethodPost, product.Path, token, tt.body)
			require.Equal(t, tt.wantStatus, res.Status, string(res.Raw))

			if tt.wantField != "" {
				assert.Contains(t, res.Errors, tt.wantField)
			}
		})
	}
}
