package auth

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

type sessionMap map[string]uint64

func (m sessionMap) Read(token string) (*session.Data, error) {
	if token == "broken" {
		return nil, errors.New("storage down")
	}

	id, ok := m[token]
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	return &session.Data{UserID: id}, nil
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(sessionMap{"abc": 7, "def": 9}, "session"))
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(strconv.FormatUint(auth.UserID(c), 10))
	})

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "anonymous", want: "0"},
		{name: "cookie", cookie: "abc", want: "7"},
		{name: "bearer", header: "Bearer def", want: "9"},
		{name: "lower case bearer", header: "bearer def", want: "9"},
		{name: "cookie wins", cookie: "abc", header: "Bearer def", want: "7"},
		{name: "unknown token", cookie: "zzz", want: "0"},
		{name: "storage error", cookie: "broken", want: "0"},
		{name: "basic auth ignored", header: "Basic abc", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
