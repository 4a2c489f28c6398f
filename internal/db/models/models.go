package models

// All lists the models every engine migrates, in dependency order.
// Session is migrated separately since only sqlite keeps sessions in gorm.
func All() []any {
	return []any{
		&Permission{},
		&Role{},
		&RolePermission{},
		&User{},
		&Category{},
		&Product{},
	}
}
