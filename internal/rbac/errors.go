package rbac

import "errors"

var (
	// ErrUnauthenticated is returned when no active user backs the request.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrPermissionDenied is returned when a requirement is not met.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateName is returned when a role or permission name is taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrInUse is returned when deleting a permission still assigned to a role.
	ErrInUse = errors.New("permission is assigned to roles")
	// ErrHasAssignedUsers is returned when deleting a role that users still hold.
	ErrHasAssignedUsers = errors.New("role has assigned users")

	// ErrRoleNotFound is returned for unknown role ids.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned for unknown permission ids.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrUserNotFound is returned for unknown or inactive users.
	ErrUserNotFound = errors.New("user not found")
)
