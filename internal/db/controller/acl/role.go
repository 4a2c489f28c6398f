package acl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// RoleUpdate carries the fields to change; nil fields are kept.
type RoleUpdate struct {
	Name        *string
	Description *string
	Level       *int
	Active      *bool
}

func orderPermissions(db *gorm.DB) *gorm.DB {
	return db.Order("permissions.id")
}

// emptySet makes a role without permissions encode them as [].
func emptySet(r *models.Role) {
	if r.Permissions == nil {
		r.Permissions = []models.Permission{}
	}
}

// loadRole reads role id with its permissions into r.
func loadRole(tx *gorm.DB, id uint, r *models.Role) error {
	if err := tx.Preload("Permissions", orderPermissions).First(r, id).Error; err != nil {
		return fmt.Errorf("failed to load role: %w", err)
	}

	emptySet(r)

	return nil
}

// CreateRole inserts role with exactly the permissions permissionIDs.
func (s *Store) CreateRole(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	role.Permissions = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := roleNameFree(tx, role.Name, 0); err != nil {
			return err
		}

		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		if err := syncPermissions(tx, role.ID, permissionIDs, true); err != nil {
			return err
		}

		return loadRole(tx, role.ID, role)
	})
}

// GetRole returns role id with its permissions or rbac.ErrRoleNotFound.
func (s *Store) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	var r models.Role

	err := s.db.WithContext(ctx).Preload("Permissions", orderPermissions).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rbac.ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	emptySet(&r)

	return &r, nil
}

// ListRoles returns all roles with their permissions, highest level first.
func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role

	err := s.db.WithContext(ctx).Preload("Permissions", orderPermissions).
		Order("level DESC").Order("id").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	for i := range roles {
		emptySet(&roles[i])
	}

	return roles, nil
}

// UpdateRole applies upd to role id. A non nil permissionIDs replaces the
// permission set in the same transaction.
func (s *Store) UpdateRole(ctx context.Context, id uint, upd RoleUpdate, permissionIDs []uint) (*models.Role, error) {
	var r models.Role

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findRole(tx, id, &r); err != nil {
			return err
		}

		fields := map[string]any{}

		if upd.Name != nil {
			if err := roleNameFree(tx, *upd.Name, id); err != nil {
				return err
			}

			fields["name"] = *upd.Name
		}

		if upd.Description != nil {
			fields["description"] = *upd.Description
		}

		if upd.Level != nil {
			fields["level"] = *upd.Level
		}

		if upd.Active != nil {
			fields["is_active"] = *upd.Active
		}

		if len(fields) > 0 {
			if err := tx.Model(&r).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update role: %w", err)
			}
		}

		if permissionIDs != nil {
			if err := syncPermissions(tx, id, permissionIDs, true); err != nil {
				return err
			}
		}

		return loadRole(tx, id, &r)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &r, nil
}

// AssignPermissions adds permissionIDs to role id. Already assigned ids are skipped.
func (s *Store) AssignPermissions(ctx context.Context, id uint, permissionIDs []uint) (*models.Role, error) {
	return s.changePermissions(ctx, id, func(tx *gorm.DB) error {
		return syncPermissions(tx, id, permissionIDs, false)
	})
}

// RemovePermissions detaches permissionIDs from role id. Unassigned ids are ignored.
func (s *Store) RemovePermissions(ctx context.Context, id uint, permissionIDs []uint) (*models.Role, error) {
	return s.changePermissions(ctx, id, func(tx *gorm.DB) error {
		if len(permissionIDs) == 0 {
			return nil
		}

		err := tx.Where("role_id = ? AND permission_id IN ?", id, uniqueIDs(permissionIDs)).
			Delete(&models.RolePermission{}).Error
		if err != nil {
			return fmt.Errorf("failed to remove role permissions: %w", err)
		}

		return nil
	})
}

func (s *Store) changePermissions(ctx context.Context, id uint, change func(tx *gorm.DB) error) (*models.Role, error) {
	var r models.Role

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findRole(tx, id, &r); err != nil {
			return err
		}

		if err := change(tx); err != nil {
			return err
		}

		return loadRole(tx, id, &r)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &r, nil
}

// DeleteRole removes role id and its permission links.
// It fails with rbac.ErrHasAssignedUsers while users hold the role.
func (s *Store) DeleteRole(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Role
		if err := findRole(tx, id, &r); err != nil {
			return err
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
			return fmt.Errorf("failed to count role users: %w", err)
		}

		if users > 0 {
			return rbac.ErrHasAssignedUsers
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete role permissions: %w", err)
		}

		if err := tx.Delete(&r).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		return nil
	})
}

// BoundUserIDs implements rbac.Store.
func (s *Store) BoundUserIDs(ctx context.Context, roleID uint) ([]uint64, error) {
	var ids []uint64

	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id = ?", roleID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users of role %d: %w", roleID, err)
	}

	return ids, nil
}

// RoleUserCount returns how many users hold role id.
func (s *Store) RoleUserCount(ctx context.Context, id uint) (int64, error) {
	var n int64

	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", id).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count role users: %w", err)
	}

	return n, nil
}

func findRole(tx *gorm.DB, id uint, r *models.Role) error {
	err := tx.First(r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rbac.ErrRoleNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to get role: %w", err)
	}

	return nil
}

func roleNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var n int64

	q := tx.Model(&models.Role{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check role name: %w", err)
	}

	if n > 0 {
		return fmt.Errorf("role %q: %w", name, rbac.ErrDuplicateName)
	}

	return nil
}

// syncPermissions makes permissionIDs part of role roleID.
// With replace, assignments not in permissionIDs are removed.
// Unknown ids yield rbac.ErrPermissionNotFound.
func syncPermissions(tx *gorm.DB, roleID uint, permissionIDs []uint, replace bool) error {
	ids := uniqueIDs(permissionIDs)

	if len(ids) > 0 {
		var found int64
		if err := tx.Model(&models.Permission{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return fmt.Errorf("failed to check permissions: %w", err)
		}

		if found != int64(len(ids)) {
			return rbac.ErrPermissionNotFound
		}
	}

	if replace {
		q := tx.Where("role_id = ?", roleID)
		if len(ids) > 0 {
			q = q.Where("permission_id NOT IN ?", ids)
		}

		if err := q.Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to detach permissions: %w", err)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	var existing []uint
	if err := tx.Model(&models.RolePermission{}).Where("role_id = ?", roleID).Pluck("permission_id", &existing).Error; err != nil {
		return fmt.Errorf("failed to read role permissions: %w", err)
	}

	have := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}

	var rows []models.RolePermission

	for _, id := range ids {
		if _, ok := have[id]; !ok {
			rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: id})
		}
	}

	if len(rows) == 0 {
		return nil
	}

	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to attach permissions: %w", err)
	}

	return nil
}
