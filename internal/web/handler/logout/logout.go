// Package logout ends the caller's session.
package logout

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	authmw "github.com/catalog-admin/catalog-admin/internal/web/middleware/auth"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = handler.APIPath + "/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	sessions *session.Manager
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg
	s.sessions = deps.Sessions

	app.Post(Path, auth.RequireAuthenticated(deps.Authz), s.Logout)

	return nil
}

// Logout deletes the session and clears the session cookie.
func (s *Service) Logout(c fiber.Ctx) error {
	token, _ := c.Locals(authmw.TokenKey).(string)

	if err := s.sessions.Destroy(token); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
		return handler.Error(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Webserver.Session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   s.cfg.Webserver.Session.Secure && !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return handler.OK(c, "Logged out", nil)
}
