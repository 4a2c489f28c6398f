package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/rbac"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

// Deps bundles what handlers need to serve requests.
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	ACL       *auth.Service
	Authz     *rbac.Authorizer
	Sessions  *session.Manager
	Validator *validator.Validate
}

// Valid reports whether every dependency is set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.DB != nil && d.ACL != nil &&
		d.Authz != nil && d.Sessions != nil && d.Validator != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
