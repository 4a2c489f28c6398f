package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when login and password do not match an active user.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserAccountDisabled is returned when an inactive user tries to log in.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrCacheInvalidation is returned when a write was committed but the
	// cached subjects it affects could not be evicted.
	ErrCacheInvalidation = errors.New("authorization cache invalidation failed")

	// ErrNilDependency is returned by constructors given a nil store or authorizer.
	ErrNilDependency = errors.New("nil dependency")
)
