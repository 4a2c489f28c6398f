// Package authorize lets a client ask whether the caller meets a requirement.
// Frontends use it to show or hide actions.
package authorize

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the path of the authorize endpoint.
const Path = handler.APIPath + "/authorize"

// Request names a requirement the way ParseRequirement reads it,
// e.g. {"type": "any", "value": "products.edit|products.delete"}.
type Request struct {
	Type  string `json:"type" validate:"required,oneof=permission single any all role any-role level"`
	Value string `json:"value" validate:"required,max=1000"`
}

// Service is the authorize handler service.
type Service struct {
	handler.Service
	enforcer  auth.Enforcer
	validator *validator.Validate
}

// Handler is the authorize handler.
var Handler = Service{}

// Init initializes the authorize handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.enforcer = deps.Authz
	s.validator = deps.Validator

	app.Post(Path, s.Post)

	return nil
}

// Post evaluates the requirement for the caller and answers with the decision.
// A denial is a regular 200 answer; only a missing session yields 401.
func (s *Service) Post(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	r, err := rbac.ParseRequirement(req.Type, req.Value)
	if err != nil {
		return handler.Error(c, handler.Invalid("value", err.Error()))
	}

	d, err := s.enforcer.Enforce(c.Context(), auth.UserID(c), r)
	if errors.Is(err, rbac.ErrUnauthenticated) {
		return c.Status(fiber.StatusUnauthorized).JSON(auth.DenyResponse{
			Error:   "Unauthorized",
			Message: d.Reason,
		})
	}

	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(d)
}
