package acl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
)

// The Ensure* helpers are idempotent upserts by name, used by the seeder.

// EnsurePermission creates p or refreshes description and category of the
// permission with the same name. The active flag of an existing row is kept.
func (s *Store) EnsurePermission(ctx context.Context, p *models.Permission) error {
	err := s.db.WithContext(ctx).
		Where(models.Permission{Name: p.Name}).
		Assign(map[string]any{"description": p.Description, "category": p.Category}).
		Attrs(map[string]any{"is_active": p.Active}).
		FirstOrCreate(p).Error
	if err != nil {
		return fmt.Errorf("failed to ensure permission %q: %w", p.Name, err)
	}

	return nil
}

// EnsureRole creates role or updates the role with the same name, then sets
// its permissions to exactly permissionIDs.
func (s *Store) EnsureRole(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	role.Permissions = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(models.Role{Name: role.Name}).
			Assign(map[string]any{"description": role.Description, "level": role.Level}).
			Attrs(map[string]any{"is_active": role.Active}).
			FirstOrCreate(role).Error
		if err != nil {
			return fmt.Errorf("failed to ensure role %q: %w", role.Name, err)
		}

		return syncPermissions(tx, role.ID, permissionIDs, true)
	})
}

// EnsureUser creates u unless a user with the same username exists.
// Existing users are left untouched and loaded into u.
func (s *Store) EnsureUser(ctx context.Context, u *models.User) (created bool, err error) {
	u.Role = nil

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User

		err := tx.Where("username = ?", u.Username).Limit(1).Find(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to get user %q: %w", u.Username, err)
		}

		if existing.ID != 0 {
			*u = existing
			return nil
		}

		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("failed to create user %q: %w", u.Username, err)
		}

		created = true

		return nil
	})

	return created, err
}
