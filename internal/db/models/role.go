package models

import "time"

// Role levels are bounded to keep MinLevel requirements comparable.
const (
	MinRoleLevel = 1
	MaxRoleLevel = 10
)

// Role is a named, leveled bundle of permissions.
// An inactive role contributes neither permissions nor level to its users.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Level       int    `gorm:"not null" json:"level"`
	Active      bool   `gorm:"column:is_active;not null" json:"is_active"`

	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides gorm's default naming.
func (Role) TableName() string {
	return "roles"
}
