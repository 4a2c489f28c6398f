// Package user provides the user administration API.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the base path for user management.
const Path = handler.ACLPath + "/users"

// CreateRequest is the body of create.
type CreateRequest struct {
	Name                 string `json:"name" validate:"max=200"`
	Username             string `json:"username" validate:"required,min=3,max=100"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=255"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	RoleID               *uint  `json:"role_id" validate:"omitempty,min=1"`
	Active               *bool  `json:"is_active"`
}

// UpdateRequest is the body of update. Omitted fields are kept and an empty
// password keeps the current one.
type UpdateRequest struct {
	Name                 *string `json:"name" validate:"omitempty,max=200"`
	Username             *string `json:"username" validate:"omitempty,min=3,max=100"`
	Email                *string `json:"email" validate:"omitempty,email,max=255"`
	Password             string  `json:"password" validate:"omitempty,min=8,max=255"`
	PasswordConfirmation string  `json:"password_confirmation" validate:"eqfield=Password"`
	Active               *bool   `json:"is_active"`
}

// AssignRoleRequest is the body of assign-role.
type AssignRoleRequest struct {
	RoleID uint `json:"role_id" validate:"required,min=1"`
}

// Service provides CRUD operations for users.
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
	app.Post(Path+"/:id/assign-role", s.AssignRole)
	app.Delete(Path+"/:id/remove-role", s.RemoveRole)
	app.Get(Path+"/:id/permissions", s.Permissions)

	return nil
}

// List returns users, optionally filtered by ?role_id= and ?search=.
func (s *Service) List(c fiber.Ctx) error {
	f := acl.UserFilter{Search: c.Query("search")}

	if v := c.Query("role_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			return handler.Error(c, handler.Invalid("role_id", "must be a positive integer"))
		}

		roleID := uint(id)
		f.RoleID = &roleID
	}

	users, err := s.acl.ListUsers(c.Context(), f)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", users)
}

// Get returns one user with its role.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	u, err := s.acl.GetUser(c.Context(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", u)
}

// Create adds a user with a hashed password.
func (s *Service) Create(c fiber.Ctx) error {
	var req CreateRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return handler.Error(c, err)
	}

	u := &models.User{
		Active:   req.Active == nil || *req.Active,
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: hash,
		RoleID:   req.RoleID,
	}

	if err := s.acl.CreateUser(c.Context(), u); err != nil {
		return handler.Error(c, handler.AsValidation(err, "role_id", rbac.ErrRoleNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint64("user_id", u.ID).Str("username", u.Username).Msg("user created")

	return handler.Created(c, "User created successfully", u)
}

// Update changes a user's profile, password or active flag.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var req UpdateRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	upd := acl.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Active:   req.Active,
	}

	if req.Password != "" {
		hash, err := models.HashPassword(req.Password)
		if err != nil {
			return handler.Error(c, err)
		}

		upd.Password = &hash
	}

	u, err := s.acl.UpdateUser(c.Context(), id, upd)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint64("user_id", id).Msg("user updated")

	return handler.OK(c, "User updated successfully", u)
}

// Delete removes a user. Callers can not delete their own account.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if id == auth.UserID(c) {
		return handler.Error(c, handler.Invalid("id", "you cannot delete your own account"))
	}

	if err := s.acl.DeleteUser(c.Context(), id); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint64("user_id", id).Msg("user deleted")

	return handler.OK(c, "User deleted successfully", nil)
}

// AssignRole binds a role to the user, replacing the previous one.
func (s *Service) AssignRole(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var req AssignRoleRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	u, err := s.acl.AssignRole(c.Context(), id, req.RoleID)
	if err != nil {
		return handler.Error(c, handler.AsValidation(err, "role_id", rbac.ErrRoleNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint64("user_id", id).Uint("role_id", req.RoleID).Msg("role assigned")

	return handler.OK(c, "Role assigned successfully", u)
}

// RemoveRole unbinds the user's role.
func (s *Service) RemoveRole(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	u, err := s.acl.RemoveRole(c.Context(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint64("user_id", id).Msg("role removed")

	return handler.OK(c, "Role removed successfully", u)
}

// Permissions returns the user's effective authorization view.
// Inactive users hold nothing.
func (s *Service) Permissions(c fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	u, err := s.acl.GetUser(c.Context(), id)
	if err != nil {
		return handler.Error(c, err)
	}

	sub, err := s.acl.Subject(c.Context(), id)
	if err != nil && !errors.Is(err, rbac.ErrUserNotFound) {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", handler.NewProfile(u, sub))
}
