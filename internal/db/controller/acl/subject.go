package acl

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

type subjectRow struct {
	ID         uint64
	Active     bool
	RoleName   *string
	RoleLevel  *int
	RoleActive *bool
}

// LoadSubject implements rbac.Store.
//
// The user row, its role and the role's active permissions are read in one
// transaction. An inactive role keeps its name but yields level 0 and no
// permissions.
func (s *Store) LoadSubject(ctx context.Context, userID uint64) (rbac.Subject, error) {
	var subject rbac.Subject

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row subjectRow

		res := tx.Table("users").
			Select("users.id, users.active, roles.name AS role_name, roles.level AS role_level, roles.is_active AS role_active").
			Joins("LEFT JOIN roles ON roles.id = users.role_id").
			Where("users.id = ?", userID).
			Limit(1).
			Scan(&row)
		if res.Error != nil {
			return fmt.Errorf("failed to read user %d: %w", userID, res.Error)
		}

		if res.RowsAffected == 0 || !row.Active {
			return rbac.ErrUserNotFound
		}

		if row.RoleName == nil {
			subject = rbac.NewSubject(userID, "", 0, nil)
			return nil
		}

		if row.RoleActive == nil || !*row.RoleActive {
			subject = rbac.NewSubject(userID, *row.RoleName, 0, nil)
			return nil
		}

		var names []string

		err := tx.Table("permissions").
			Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
			Joins("JOIN users ON users.role_id = role_permissions.role_id").
			Where("users.id = ? AND permissions.is_active = ?", userID, true).
			Order("permissions.name").
			Pluck("permissions.name", &names).Error
		if err != nil {
			return fmt.Errorf("failed to read permissions of user %d: %w", userID, err)
		}

		level := 0
		if row.RoleLevel != nil {
			level = *row.RoleLevel
		}

		subject = rbac.NewSubject(userID, *row.RoleName, level, names)

		return nil
	})
	if err != nil {
		return rbac.Subject{}, err //nolint:wrapcheck
	}

	return subject, nil
}

// UserIDsWithPermission implements rbac.Store.
func (s *Store) UserIDsWithPermission(ctx context.Context, permissionID uint) ([]uint64, error) {
	var ids []uint64

	err := s.db.WithContext(ctx).Table("users").
		Joins("JOIN role_permissions ON role_permissions.role_id = users.role_id").
		Where("role_permissions.permission_id = ?", permissionID).
		Distinct().
		Order("users.id").
		Pluck("users.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users of permission %d: %w", permissionID, err)
	}

	return ids, nil
}
