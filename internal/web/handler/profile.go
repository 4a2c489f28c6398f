package handler

import (
	"time"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// Profile is the caller's account together with its authorization view.
type Profile struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	RoleID      *uint     `json:"role_id"`
	Role        string    `json:"role"`
	RoleLevel   int       `json:"role_level"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfile combines u and its subject s.
func NewProfile(u *models.User, s rbac.Subject) Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Active:      u.Active,
		RoleID:      u.RoleID,
		Role:        s.Role,
		RoleLevel:   s.Level,
		Permissions: s.Permissions(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
