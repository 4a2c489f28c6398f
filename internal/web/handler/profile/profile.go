// Package profile serves the caller's own account and authorization view.
package profile

import (
	"github.com/gofiber/fiber/v3"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the path of the profile endpoint.
const Path = handler.APIPath + "/user"

// Service is the profile handler service.
type Service struct {
	handler.Service
	acl *auth.Service
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.acl = deps.ACL

	app.Get(Path, auth.RequireAuthenticated(deps.Authz), s.Get)

	return nil
}

// Get returns the caller with role, role_level and permissions.
// Role and permissions come from the cached subject.
func (s *Service) Get(c fiber.Ctx) error {
	userID := auth.UserID(c)

	user, err := s.acl.GetUser(c.Context(), userID)
	if err != nil {
		return handler.Error(c, err)
	}

	subject, err := s.acl.Subject(c.Context(), userID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(handler.NewProfile(user, subject))
}
