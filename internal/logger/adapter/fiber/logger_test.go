package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/logger"
	adapter "github.com/catalog-admin/catalog-admin/internal/logger/adapter/fiber"
)

type accessEntry struct {
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	UserID uint64 `json:"user_id"`
	Error  string `json:"error"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		targetPath string
		config     adapter.Config
		want       *accessEntry
	}{
		{
			name:       "no writers no output",
			targetPath: "/",
			config:     adapter.Config{},
		},
		{
			name:       "get root",
			targetPath: "/",
			want:       &accessEntry{Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "query string kept",
			targetPath: "/?sku=ABC-1",
			want:       &accessEntry{Status: 200, URI: "/?sku=ABC-1", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "unknown route logs 404",
			targetPath: "/nope",
			want:       &accessEntry{Status: 404, URI: "/nope", Method: fiber.MethodGet, Host: "example.com", Error: "Not Found"},
		},
		{
			name:       "handler error logs status and error",
			targetPath: "/fail",
			want:       &accessEntry{Status: 403, URI: "/fail", Method: fiber.MethodGet, Host: "example.com", Error: "nope"},
		},
		{
			name:       "principal is logged",
			targetPath: "/me",
			want:       &accessEntry{Status: 200, URI: "/me", Method: fiber.MethodGet, Host: "example.com", UserID: 7},
		},
		{
			name:       "checkalive skipped",
			targetPath: "/checkalive",
			config: adapter.Config{
				Config:        logger.Log{DisableCheckAlive: true},
				CheckAliveURI: "/checkalive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			cfg := tt.config
			if tt.want != nil || cfg.CheckAliveURI != "" {
				cfg.Output = &buf
			}

			app := fiber.New()
			app.Use(adapter.New(cfg))
			app.Get("/", func(c fiber.Ctx) error { return c.SendString("hello") })
			app.Get("/checkalive", func(c fiber.Ctx) error { return c.SendString("ok") })
			app.Get("/fail", func(_ fiber.Ctx) error { return fiber.NewError(fiber.StatusForbidden, "nope") })
			app.Get("/me", func(c fiber.Ctx) error {
				c.Locals("user_id", uint64(7))
				return c.SendString("me")
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.targetPath, nil))
			require.NoError(t, err)

			if tt.want == nil {
				assert.Empty(t, buf.String())
				return
			}

			assert.Equal(t, tt.want.Status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Performance"))

			var got accessEntry
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			assert.Equal(t, *tt.want, got)
		})
	}
}
