package auth

import "strings"

// Permission constants define the permissions known to the application.
// Names follow the resource.action form.
const (
	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermRolesView   = "roles.view"
	PermRolesCreate = "roles.create"
	PermRolesEdit   = "roles.edit"
	PermRolesDelete = "roles.delete"

	PermPermissionsView   = "permissions.view"
	PermPermissionsCreate = "permissions.create"
	PermPermissionsEdit   = "permissions.edit"
	PermPermissionsDelete = "permissions.delete"

	PermProductsView   = "products.view"
	PermProductsCreate = "products.create"
	PermProductsEdit   = "products.edit"
	PermProductsDelete = "products.delete"

	PermCategoriesView   = "categories.view"
	PermCategoriesCreate = "categories.create"
	PermCategoriesEdit   = "categories.edit"
	PermCategoriesDelete = "categories.delete"

	// PermSystemSettings allows changing application settings.
	PermSystemSettings = "system.settings"
	// PermSystemLogs allows reading application logs.
	PermSystemLogs = "system.logs"
)

// Permission categories used for grouping in the admin UI.
const (
	CategoryUsers       = "User Management"
	CategoryRoles       = "Role Management"
	CategoryPermissions = "Permission Management"
	CategoryProducts    = "Product Management"
	CategoryCategories  = "Category Management"
	CategorySystem      = "System"
)

// Built-in roles created by the seeder.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)

// PermissionDef describes a permission to seed.
type PermissionDef struct {
	Name        string
	Description string
	Category    string
}

// RoleDef describes a role to seed. Grants selects its permissions.
type RoleDef struct {
	Name        string
	Description string
	Level       int
	Grants      func(PermissionDef) bool
}

// DefaultPermissions returns the permissions every installation starts with.
func DefaultPermissions() []PermissionDef {
	return []PermissionDef{
		{PermUsersView, "View users", CategoryUsers},
		{PermUsersCreate, "Create users", CategoryUsers},
		{PermUsersEdit, "Edit users", CategoryUsers},
		{PermUsersDelete, "Delete users", CategoryUsers},

		{PermRolesView, "View roles", CategoryRoles},
		{PermRolesCreate, "Create roles", CategoryRoles},
		{PermRolesEdit, "Edit roles", CategoryRoles},
		{PermRolesDelete, "Delete roles", CategoryRoles},

		{PermPermissionsView, "View permissions", CategoryPermissions},
		{PermPermissionsCreate, "Create permissions", CategoryPermissions},
		{PermPermissionsEdit, "Edit permissions", CategoryPermissions},
		{PermPermissionsDelete, "Delete permissions", CategoryPermissions},

		{PermProductsView, "View products", CategoryProducts},
		{PermProductsCreate, "Create products", CategoryProducts},
		{PermProductsEdit, "Edit products", CategoryProducts},
		{PermProductsDelete, "Delete products", CategoryProducts},

		{PermCategoriesView, "View categories", CategoryCategories},
		{PermCategoriesCreate, "Create categories", CategoryCategories},
		{PermCategoriesEdit, "Edit categories", CategoryCategories},
		{PermCategoriesDelete, "Delete categories", CategoryCategories},

		{PermSystemSettings, "Manage system settings", CategorySystem},
		{PermSystemLogs, "View system logs", CategorySystem},
	}
}

// DefaultRoles returns the built-in roles, highest level first.
func DefaultRoles() []RoleDef {
	return []RoleDef{
		{
			Name:        RoleAdmin,
			Description: "Full access to every resource",
			Level:       10,
			Grants:      func(PermissionDef) bool { return true },
		},
		{
			Name:        RoleManager,
			Description: "Manages the catalog",
			Level:       5,
			Grants: func(p PermissionDef) bool {
				switch p.Category {
				case CategorySystem, CategoryUsers, CategoryRoles, CategoryPermissions:
					return false
				}

				return true
			},
		},
		{
			Name:        RoleUser,
			Description: "Read only access",
			Level:       1,
			Grants: func(p PermissionDef) bool {
				return strings.HasSuffix(p.Name, ".view")
			},
		},
	}
}
