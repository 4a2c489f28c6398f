package models

// RolePermission is the join row between roles and permissions.
// The composite key keeps an assignment unique.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey;column:role_id"`
	PermissionID uint `gorm:"primaryKey;column:permission_id;index"`
}

// TableName overrides gorm's default naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
