package models

import "time"

// Category groups products in the catalog.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;size:150;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides gorm's default naming.
func (Category) TableName() string {
	return "categories"
}
