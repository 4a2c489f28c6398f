package models

import "time"

// Permission is an atomic capability in resource.action form, e.g. "products.create".
// Inactive permissions stay assigned but are never granted.
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	// Category groups permissions for display, usually the resource part of Name.
	Category string `gorm:"size:100;not null;index" json:"category"`
	Active   bool   `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides gorm's default naming.
func (Permission) TableName() string {
	return "permissions"
}
