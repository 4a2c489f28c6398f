// Package role provides the role administration API.
package role

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the base path for role management.
const Path = handler.ACLPath + "/roles"

// Request is the body of create and update. A nil Permissions keeps the
// current set on update; an empty list clears it.
type Request struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Level       int    `json:"level" validate:"required,min=1,max=10"`
	Active      *bool  `json:"is_active"`
	Permissions []uint `json:"permissions" validate:"omitempty,dive,min=1"`
}

// PermissionsRequest is the body of assign-permissions and remove-permissions.
type PermissionsRequest struct {
	Permissions []uint `json:"permissions" validate:"required,min=1,dive,min=1"`
}

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	acl       *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Access control is applied by the caller on the ACL group.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.acl = deps.ACL
	s.validator = deps.Validator

	app.Get(Path, s.List)
	app.Post(Path, s.Create)
	app.Get(Path+"/:id", s.Get)
	app.Put(Path+"/:id", s.Update)
	app.Delete(Path+"/:id", s.Delete)
	app.Post(Path+"/:id/assign-permissions", s.AssignPermissions)
	app.Post(Path+"/:id/remove-permissions", s.RemovePermissions)

	return nil
}

func roleID(c fiber.Ctx) (uint, error) {
	id, err := handler.ParamID(c, "id")
	return uint(id), err
}

// List returns all roles with their permissions.
func (s *Service) List(c fiber.Ctx) error {
	roles, err := s.acl.ListRoles(c.Context())
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", roles)
}

// Get returns one role.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	r, err := s.acl.GetRole(c.Context(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", r)
}

// Create adds a role.
func (s *Service) Create(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	r := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		Active:      req.Active == nil || *req.Active,
	}

	if err := s.acl.CreateRole(c.Context(), r, req.Permissions); err != nil {
		return handler.Error(c, handler.AsValidation(err, "permissions", rbac.ErrPermissionNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("role_id", r.ID).Str("name", r.Name).Msg("role created")

	return handler.Created(c, "Role created successfully", r)
}

// Update changes a role and, when given, replaces its permissions.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	upd := acl.RoleUpdate{
		Name:        &req.Name,
		Description: &req.Description,
		Level:       &req.Level,
		Active:      req.Active,
	}

	r, err := s.acl.UpdateRole(c.Context(), id, upd, req.Permissions)
	if err != nil {
		return handler.Error(c, handler.AsValidation(err, "permissions", rbac.ErrPermissionNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("role_id", id).Msg("role updated")

	return handler.OK(c, "Role updated successfully", r)
}

// Delete removes a role no user holds.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	if err := s.acl.DeleteRole(c.Context(), id); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("role_id", id).Msg("role deleted")

	return handler.OK(c, "Role deleted successfully", nil)
}

// AssignPermissions adds permissions to a role. Assigned ones are kept.
func (s *Service) AssignPermissions(c fiber.Ctx) error {
	return s.changePermissions(c, s.acl.AssignPermissions, "Permissions assigned successfully")
}

// RemovePermissions detaches permissions from a role.
func (s *Service) RemovePermissions(c fiber.Ctx) error {
	return s.changePermissions(c, s.acl.RemovePermissions, "Permissions removed successfully")
}

type permissionChange func(ctx context.Context, id uint, permissionIDs []uint) (*models.Role, error)

func (s *Service) changePermissions(c fiber.Ctx, change permissionChange, msg string) error {
	id, err := roleID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var req PermissionsRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	r, err := change(c.Context(), id, req.Permissions)
	if err != nil {
		return handler.Error(c, handler.AsValidation(err, "permissions", rbac.ErrPermissionNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("role_id", id).Uints("permissions", req.Permissions).Msg(msg)

	return handler.OK(c, msg, r)
}
