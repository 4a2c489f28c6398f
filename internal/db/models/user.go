// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// User represents an account of the admin backend.
// A user holds at most one role; permissions are only reachable through it.
type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active users can log in and are authorized. Inactive users are treated as unknown.
	Active   bool   `gorm:"not null" json:"active"`
	Username string `gorm:"unique;size:100;not null" json:"username"`
	Email    string `gorm:"unique;size:255;not null" json:"email"`
	// Password is the Argon2id hash.
	Password string `gorm:"size:255" json:"-"`
	Name     string `gorm:"size:200" json:"name"`
	// RoleID is nil for users without a role.
	RoleID *uint `gorm:"column:role_id;index" json:"role_id"`
	Role   *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"role,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides gorm's default naming.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using Argon2id with the default parameters.
func HashPassword(password string) (string, error) {
	hashed, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return hashed, nil
}

// VerifyPassword compares password against the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}
