package acl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// PermissionFilter narrows ListPermissions. Zero values do not filter.
type PermissionFilter struct {
	Category string
	Active   *bool
}

// PermissionUpdate carries the fields to change; nil fields are kept.
type PermissionUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Active      *bool
}

// CreatePermission inserts p. A taken name yields rbac.ErrDuplicateName.
func (s *Store) CreatePermission(ctx context.Context, p *models.Permission) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := permissionNameFree(tx, p.Name, 0); err != nil {
			return err
		}

		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create permission: %w", err)
		}

		return nil
	})
}

// ListPermissions returns permissions in id order.
func (s *Store) ListPermissions(ctx context.Context, f PermissionFilter) ([]models.Permission, error) {
	q := s.db.WithContext(ctx).Order("id")

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var perms []models.Permission
	if err := q.Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return perms, nil
}

// GetPermission returns the permission id or rbac.ErrPermissionNotFound.
func (s *Store) GetPermission(ctx context.Context, id uint) (*models.Permission, error) {
	var p models.Permission

	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rbac.ErrPermissionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return &p, nil
}

// UpdatePermission applies upd to permission id.
// A new name must not be used by another permission.
func (s *Store) UpdatePermission(ctx context.Context, id uint, upd PermissionUpdate) (*models.Permission, error) {
	var p models.Permission

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rbac.ErrPermissionNotFound
			}

			return fmt.Errorf("failed to get permission: %w", err)
		}

		fields := map[string]any{}

		if upd.Name != nil {
			if err := permissionNameFree(tx, *upd.Name, id); err != nil {
				return err
			}

			fields["name"] = *upd.Name
		}

		if upd.Description != nil {
			fields["description"] = *upd.Description
		}

		if upd.Category != nil {
			fields["category"] = *upd.Category
		}

		if upd.Active != nil {
			fields["is_active"] = *upd.Active
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&p).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update permission: %w", err)
		}

		return tx.First(&p, id).Error
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &p, nil
}

// DeletePermission removes permission id.
// It fails with rbac.ErrInUse while any role holds the permission.
func (s *Store) DeletePermission(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.RolePermission{}).Where("permission_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count permission references: %w", err)
		}

		if refs > 0 {
			return rbac.ErrInUse
		}

		res := tx.Delete(&models.Permission{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete permission: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return rbac.ErrPermissionNotFound
		}

		return nil
	})
}

// PermissionCategories returns the distinct non empty categories sorted by name.
func (s *Store) PermissionCategories(ctx context.Context) ([]string, error) {
	var cats []string

	err := s.db.WithContext(ctx).Model(&models.Permission{}).
		Where("category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permission categories: %w", err)
	}

	return cats, nil
}

// PermissionsByCategory groups the active permissions by category.
func (s *Store) PermissionsByCategory(ctx context.Context) (map[string][]models.Permission, error) {
	active := true

	perms, err := s.ListPermissions(ctx, PermissionFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.Permission)
	for _, p := range perms {
		out[p.Category] = append(out[p.Category], p)
	}

	return out, nil
}

func permissionNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var n int64

	q := tx.Model(&models.Permission{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check permission name: %w", err)
	}

	if n > 0 {
		return fmt.Errorf("permission %q: %w", name, rbac.ErrDuplicateName)
	}

	return nil
}
