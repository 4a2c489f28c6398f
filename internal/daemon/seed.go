package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/acl"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
)

type demoUser struct {
	username, email, name, role string
}

var demoUsers = []demoUser{ //nolint:gochecknoglobals
	{"manager", "manager@example.com", "Manager User", auth.RoleManager},
	{"user", "user@example.com", "Regular User", auth.RoleUser},
}

// Seed creates the default permissions and roles and the admin account.
// Running it again refreshes permissions and role grants; existing users are kept.
func Seed(ctx context.Context, store *acl.Store, cfg config.Seed) error {
	ids := make(map[string]uint)

	for _, def := range auth.DefaultPermissions() {
		p := models.Permission{Name: def.Name, Description: def.Description, Category: def.Category, Active: true}
		if err := store.EnsurePermission(ctx, &p); err != nil {
			return errors.Wrap(err, "seed permissions")
		}

		ids[def.Name] = p.ID
	}

	roles := make(map[string]uint)

	for _, def := range auth.DefaultRoles() {
		var granted []uint

		for _, p := range auth.DefaultPermissions() {
			if def.Grants(p) {
				granted = append(granted, ids[p.Name])
			}
		}

		r := models.Role{Name: def.Name, Description: def.Description, Level: def.Level, Active: true}
		if err := store.EnsureRole(ctx, &r, granted); err != nil {
			return errors.Wrap(err, "seed roles")
		}

		roles[def.Name] = r.ID

		log.Debug().Str("role", r.Name).Int("permissions", len(granted)).Msg("role seeded")
	}

	users := []demoUser{{"admin", "admin@example.com", "Administrator", auth.RoleAdmin}}
	if cfg.DemoUsers {
		users = append(users, demoUsers...)
	}

	hash, err := models.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err //nolint:wrapcheck
	}

	for _, du := range users {
		roleID := roles[du.role]

		u := models.User{
			Active:   true,
			Username: du.username,
			Email:    du.email,
			Name:     du.name,
			Password: hash,
			RoleID:   &roleID,
		}

		created, err := store.EnsureUser(ctx, &u)
		if err != nil {
			return errors.Wrap(err, "seed users")
		}

		if created {
			log.Info().Str("username", u.Username).Str("role", du.role).Msg("user seeded")
		}
	}

	return nil
}

// seedIfEmpty seeds a database without users.
func seedIfEmpty(ctx context.Context, store *acl.Store, cfg config.Seed) error {
	var count int64
	if err := store.DB().WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count users")
	}

	if count > 0 {
		return nil
	}

	log.Info().Msg("empty database, seeding default roles and users")

	return Seed(ctx, store, cfg)
}
