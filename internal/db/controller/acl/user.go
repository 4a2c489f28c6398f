package acl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// UserFilter narrows ListUsers. Zero values do not filter.
type UserFilter struct {
	RoleID *uint
	Search string // matched against username, email and name
}

// UserUpdate carries the fields to change; nil fields are kept.
// Password must already be hashed.
type UserUpdate struct {
	Username *string
	Email    *string
	Name     *string
	Password *string
	Active   *bool
}

// CreateUser inserts u. Username and email must be unused and RoleID, when
// set, must name an existing role.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Role = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userLoginFree(tx, u.Username, u.Email, 0); err != nil {
			return err
		}

		if u.RoleID != nil {
			var r models.Role
			if err := findRole(tx, *u.RoleID, &r); err != nil {
				return err
			}
		}

		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return tx.Preload("Role").First(u, u.ID).Error
	})
}

// GetUser returns user id with its role or rbac.ErrUserNotFound.
func (s *Store) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User

	err := s.db.WithContext(ctx).Preload("Role").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rbac.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// UserByLogin finds a user by username or email.
func (s *Store) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User

	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rbac.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// ListUsers returns users with their roles in id order.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx).Preload("Role").Order("id")

	if f.RoleID != nil {
		q = q.Where("role_id = ?", *f.RoleID)
	}

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR name LIKE ?", like, like, like)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser applies upd to user id.
func (s *Store) UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*models.User, error) {
	var u models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findUser(tx, id, &u); err != nil {
			return err
		}

		fields := map[string]any{}

		if upd.Username != nil || upd.Email != nil {
			username, email := u.Username, u.Email
			if upd.Username != nil {
				username = *upd.Username
			}

			if upd.Email != nil {
				email = *upd.Email
			}

			if err := userLoginFree(tx, username, email, id); err != nil {
				return err
			}

			fields["username"], fields["email"] = username, email
		}

		if upd.Name != nil {
			fields["name"] = *upd.Name
		}

		if upd.Password != nil {
			fields["password"] = *upd.Password
		}

		if upd.Active != nil {
			fields["active"] = *upd.Active
		}

		if len(fields) > 0 {
			if err := tx.Model(&u).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		return tx.Preload("Role").First(&u, id).Error
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &u, nil
}

// DeleteUser removes user id, which also drops its role binding.
func (s *Store) DeleteUser(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return rbac.ErrUserNotFound
	}

	return nil
}

// AssignRole binds user userID to role roleID, replacing any previous role.
func (s *Store) AssignRole(ctx context.Context, userID uint64, roleID uint) (*models.User, error) {
	return s.bind(ctx, userID, func(tx *gorm.DB) (any, error) {
		var r models.Role
		if err := findRole(tx, roleID, &r); err != nil {
			return nil, err
		}

		return roleID, nil
	})
}

// RemoveRole unbinds user userID from its role.
func (s *Store) RemoveRole(ctx context.Context, userID uint64) (*models.User, error) {
	return s.bind(ctx, userID, func(*gorm.DB) (any, error) {
		return gorm.Expr("NULL"), nil
	})
}

func (s *Store) bind(ctx context.Context, userID uint64, value func(tx *gorm.DB) (any, error)) (*models.User, error) {
	var u models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findUser(tx, userID, &u); err != nil {
			return err
		}

		v, err := value(tx)
		if err != nil {
			return err
		}

		if err := tx.Model(&u).Update("role_id", v).Error; err != nil {
			return fmt.Errorf("failed to bind role: %w", err)
		}

		return tx.Preload("Role").First(&u, userID).Error
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &u, nil
}

func findUser(tx *gorm.DB, id uint64, u *models.User) error {
	err := tx.First(u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rbac.ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return nil
}

func userLoginFree(tx *gorm.DB, username, email string, exceptID uint64) error {
	var n int64

	q := tx.Model(&models.User{}).Where("(username = ? OR email = ?)", username, email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check user login: %w", err)
	}

	if n > 0 {
		return fmt.Errorf("user %q: %w", username, rbac.ErrDuplicateName)
	}

	return nil
}
