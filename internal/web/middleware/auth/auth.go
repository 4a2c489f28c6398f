package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

// TokenKey is the fiber.Locals key holding the session token of the request.
const TokenKey = "session_token"

const bearerPrefix = "bearer "

// SessionReader resolves session tokens. *session.Manager implements it.
type SessionReader interface {
	Read(token string) (*session.Data, error)
}

// Middleware resolves the session of a request and stores the user id in
// fiber.Locals under auth.UserIDKey. The token is taken from the cookie
// named cookieName or from an "Authorization: Bearer" header.
// Requests without a valid session pass through anonymously.
func Middleware(sessions SessionReader, cookieName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := Token(c, cookieName)
		if token == "" {
			return c.Next()
		}

		data, err := sessions.Read(token)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return c.Next()
		}

		c.Locals(auth.UserIDKey, data.UserID)
		c.Locals(TokenKey, token)

		return c.Next()
	}
}

// Token returns the session token sent with the request.
// The cookie takes precedence over the Authorization header.
func Token(c fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}

	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}

	return ""
}
