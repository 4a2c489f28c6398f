package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
)

// UserFinder looks users up by username or email. *acl.Store implements it.
type UserFinder interface {
	UserByLogin(ctx context.Context, login string) (*models.User, error)
}

// LocalProvider handles local database authentication.
type LocalProvider struct {
	users UserFinder
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(users UserFinder) *LocalProvider {
	return &LocalProvider{users: users}
}

// Authenticate checks login, a username or email, and password.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (p *LocalProvider) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := p.users.UserByLogin(ctx, login)
	if errors.Is(err, rbac.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return user, nil
}
