package auth

import (
	"context"
	"fmt"

	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

var _ UserFinder = (*Service)(nil)

// Service is the ACL administration layer. Every mutation is committed by the
// store first and then evicts the affected cached subjects before returning.
type Service struct {
	store *acl.Store
	authz *rbac.Authorizer
}

// NewService creates a new ACL service.
func NewService(store *acl.Store, authz *rbac.Authorizer) (*Service, error) {
	if store == nil || authz == nil {
		return nil, ErrNilDependency
	}

	return &Service{store: store, authz: authz}, nil
}

// Authorizer returns the authorizer used for enforcement and invalidation.
func (s *Service) Authorizer() *rbac.Authorizer {
	return s.authz
}

func invalidated(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrCacheInvalidation, err)
}

// Permissions

func (s *Service) ListPermissions(ctx context.Context, f acl.PermissionFilter) ([]models.Permission, error) {
	return s.store.ListPermissions(ctx, f) //nolint:wrapcheck
}

func (s *Service) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	return s.store.GetPermission(ctx, id) //nolint:wrapcheck
}

func (s *Service) PermissionCategories(ctx context.Context) ([]string, error) {
	return s.store.PermissionCategories(ctx) //nolint:wrapcheck
}

func (s *Service) PermissionsByCategory(ctx context.Context) (map[string][]models.Permission, error) {
	return s.store.PermissionsByCategory(ctx) //nolint:wrapcheck
}

// CreatePermission adds p to the catalog. No role holds it yet, so nothing is evicted.
func (s *Service) CreatePermission(ctx context.Context, p *models.Permission) error {
	return s.store.CreatePermission(ctx, p) //nolint:wrapcheck
}

// UpdatePermission changes permission id and evicts the users whose role carries it.
func (s *Service) UpdatePermission(ctx context.Context, id uint, upd acl.PermissionUpdate) (*models.Permission, error) {
	p, err := s.store.UpdatePermission(ctx, id, upd)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return p, invalidated(s.authz.OnPermissionChanged(ctx, id))
}

// DeletePermission removes an unassigned permission.
func (s *Service) DeletePermission(ctx context.Context, id uint) error {
	if err := s.store.DeletePermission(ctx, id); err != nil {
		return err //nolint:wrapcheck
	}

	return invalidated(s.authz.OnPermissionDeleted(ctx, id))
}

// Roles

func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.store.ListRoles(ctx) //nolint:wrapcheck
}

func (s *Service) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	return s.store.GetRole(ctx, id) //nolint:wrapcheck
}

// RoleUserCount returns how many users hold role id.
func (s *Service) RoleUserCount(ctx context.Context, id uint) (int64, error) {
	return s.store.RoleUserCount(ctx, id) //nolint:wrapcheck
}

// CreateRole adds a role with the given permissions. A new role has no users.
func (s *Service) CreateRole(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	return s.store.CreateRole(ctx, role, permissionIDs) //nolint:wrapcheck
}

// UpdateRole changes role id and, when permissionIDs is non nil, replaces its permissions.
func (s *Service) UpdateRole(
	ctx context.Context, id uint, upd acl.RoleUpdate, permissionIDs []uint,
) (*models.Role, error) {
	r, err := s.store.UpdateRole(ctx, id, upd, permissionIDs)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return r, invalidated(s.authz.OnRoleChanged(ctx, id))
}

// AssignPermissions adds permissions to role id.
func (s *Service) AssignPermissions(ctx context.Context, id uint, permissionIDs []uint) (*models.Role, error) {
	r, err := s.store.AssignPermissions(ctx, id, permissionIDs)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return r, invalidated(s.authz.OnPermissionSetChanged(ctx, id))
}

// RemovePermissions detaches permissions from role id.
func (s *Service) RemovePermissions(ctx context.Context, id uint, permissionIDs []uint) (*models.Role, error) {
	r, err := s.store.RemovePermissions(ctx, id, permissionIDs)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return r, invalidated(s.authz.OnPermissionSetChanged(ctx, id))
}

// DeleteRole removes a role no user holds.
func (s *Service) DeleteRole(ctx context.Context, id uint) error {
	if err := s.store.DeleteRole(ctx, id); err != nil {
		return err //nolint:wrapcheck
	}

	return invalidated(s.authz.OnRoleChanged(ctx, id))
}

// Users

func (s *Service) ListUsers(ctx context.Context, f acl.UserFilter) ([]models.User, error) {
	return s.store.ListUsers(ctx, f) //nolint:wrapcheck
}

func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return s.store.GetUser(ctx, id) //nolint:wrapcheck
}

// UserByLogin finds a user by username or email, which makes Service a UserFinder.
func (s *Service) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.store.UserByLogin(ctx, login) //nolint:wrapcheck
}

// CreateUser adds u. The cache can not hold a subject for a new id.
func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	return s.store.CreateUser(ctx, u) //nolint:wrapcheck
}

// UpdateUser changes user id. Deactivating a user takes effect on its next request.
func (s *Service) UpdateUser(ctx context.Context, id uint64, upd acl.UserUpdate) (*models.User, error) {
	u, err := s.store.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return u, invalidated(s.authz.OnUserRoleBindingChanged(ctx, id))
}

// DeleteUser removes user id together with its binding.
func (s *Service) DeleteUser(ctx context.Context, id uint64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err //nolint:wrapcheck
	}

	return invalidated(s.authz.OnUserRoleBindingChanged(ctx, id))
}

// AssignRole binds user id to roleID.
func (s *Service) AssignRole(ctx context.Context, id uint64, roleID uint) (*models.User, error) {
	u, err := s.store.AssignRole(ctx, id, roleID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return u, invalidated(s.authz.OnUserRoleBindingChanged(ctx, id))
}

// RemoveRole unbinds user id from its role.
func (s *Service) RemoveRole(ctx context.Context, id uint64) (*models.User, error) {
	u, err := s.store.RemoveRole(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return u, invalidated(s.authz.OnUserRoleBindingChanged(ctx, id))
}

// Subject returns the cached authorization view of user id.
func (s *Service) Subject(ctx context.Context, id uint64) (rbac.Subject, error) {
	return s.authz.Subject(ctx, id) //nolint:wrapcheck
}
