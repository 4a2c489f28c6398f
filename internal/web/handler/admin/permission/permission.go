// Package permission provides the permission administration API.
package permission

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the base path for permission management.
const Path = handler.ACLPath + "/permissions"

// Request is the body of create and update.
type Request struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Category    string `json:"category" validate:"required,max=100"`
	Active      *bool  `json:"is_active"`
}

// Service provides CRUD operations for permissions.
type Service struct {
	handler.Service
	acl       *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. The static routes come before /:id.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.acl = deps.ACL
	s.validator = deps.Validator

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(Path+"/by-category", s.ByCategory)
	app.Get(Path+"/categories", s.Categories)
	app.Get(Path+"/:id", s.Get)
	app.Put(Path+"/:id", s.Update)
	app.Delete(Path+"/:id", s.Delete)

	return nil
}

func permissionID(c fiber.Ctx) (uint, error) {
	id, err := handler.ParamID(c, "id")
	return uint(id), err
}

// List returns permissions, optionally filtered by ?category= and ?active=.
func (s *Service) List(c fiber.Ctx) error {
	f := acl.PermissionFilter{Category: c.Query("category")}

	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return handler.Error(c, handler.Invalid("active", "must be a boolean"))
		}

		f.Active = &active
	}

	perms, err := s.acl.ListPermissions(c.Context(), f)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", perms)
}

// ByCategory returns permissions grouped by category.
func (s *Service) ByCategory(c fiber.Ctx) error {
	grouped, err := s.acl.PermissionsByCategory(c.Context())
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", grouped)
}

// Categories returns the distinct category names.
func (s *Service) Categories(c fiber.Ctx) error {
	cats, err := s.acl.PermissionCategories(c.Context())
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", cats)
}

// Get returns one permission.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := permissionID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	p, err := s.acl.GetPermission(c.Context(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", p)
}

// Create adds a permission. New permissions are active unless stated otherwise.
func (s *Service) Create(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	p := &models.Permission{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Active:      req.Active == nil || *req.Active,
	}

	if err := s.acl.CreatePermission(c.Context(), p); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("permission_id", p.ID).Str("name", p.Name).Msg("permission created")

	return handler.Created(c, "Permission created successfully", p)
}

// Update changes a permission.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := permissionID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	p, err := s.acl.UpdatePermission(c.Context(), id, acl.PermissionUpdate{
		Name:        &req.Name,
		Description: &req.Description,
		Category:    &req.Category,
		Active:      req.Active,
	})
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("permission_id", id).Msg("permission updated")

	return handler.OK(c, "Permission updated successfully", p)
}

// Delete removes a permission no role holds.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := permissionID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	if err := s.acl.DeletePermission(c.Context(), id); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("permission_id", id).Msg("permission deleted")

	return handler.OK(c, "Permission deleted successfully", nil)
}
