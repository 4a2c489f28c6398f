package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// UserIDKey is the fiber.Locals key holding the authenticated user id as uint64.
const UserIDKey = "user_id"

// Enforcer decides requirements for users. *rbac.Authorizer implements it.
type Enforcer interface {
	Enforce(ctx context.Context, userID uint64, req rbac.Requirement) (rbac.Decision, error)
}

// DenyResponse is the body sent when a request is not granted.
type DenyResponse struct {
	Granted bool   `json:"granted"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UserID returns the authenticated user id or 0.
func UserID(c fiber.Ctx) uint64 {
	id, _ := c.Locals(UserIDKey).(uint64)
	return id
}

// Require creates Fiber middleware that lets a request through only when req
// is granted for the authenticated user.
// Unknown users get 401, denied requests 403 and authorization failures 500.
func Require(e Enforcer, req rbac.Requirement) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID := UserID(c)

		d, err := e.Enforce(c.Context(), userID, req)

		switch {
		case errors.Is(err, rbac.ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(DenyResponse{
				Error:   "Unauthorized",
				Message: d.Reason,
			})
		case err != nil:
			log.Error().Err(err).Uint64("user_id", userID).Str("requirement", req.String()).
				Str("path", c.Path()).Msg("failed to authorize request")

			return c.Status(fiber.StatusInternalServerError).JSON(DenyResponse{
				Error:   "Internal Server Error",
				Message: d.Reason,
			})
		case !d.Granted:
			return c.Status(fiber.StatusForbidden).JSON(DenyResponse{
				Error:   "Unauthorized",
				Message: d.Reason,
			})
		}

		return c.Next()
	}
}

// RequirePermission requires a specific permission.
func RequirePermission(e Enforcer, permission string) fiber.Handler {
	return Require(e, rbac.Single(permission))
}

// RequireAnyPermission requires at least one of the given permissions.
func RequireAnyPermission(e Enforcer, permissions ...string) fiber.Handler {
	return Require(e, rbac.AnyOf(permissions...))
}

// RequireAllPermissions requires every one of the given permissions.
func RequireAllPermissions(e Enforcer, permissions ...string) fiber.Handler {
	return Require(e, rbac.AllOf(permissions...))
}

// RequireRole requires the named role.
func RequireRole(e Enforcer, role string) fiber.Handler {
	return Require(e, rbac.Role(role))
}

// RequireAnyRole requires one of the named roles.
func RequireAnyRole(e Enforcer, roles ...string) fiber.Handler {
	return Require(e, rbac.RoleAnyOf(roles...))
}

// RequireLevel requires a role level of at least level.
func RequireLevel(e Enforcer, level int) fiber.Handler {
	return Require(e, rbac.MinLevel(level))
}

// RequireAuthenticated only requires a known, active user.
func RequireAuthenticated(e Enforcer) fiber.Handler {
	return Require(e, rbac.MinLevel(0))
}
