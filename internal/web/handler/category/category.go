// Package category serves the product category API.
package category

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/catalog"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the base path of the category API.
const Path = handler.APIPath + "/categories"

// Request is the body of create and update.
type Request struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"max=500"`
}

// Service is the category handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, each guarded by its categories.* permission.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.validator = deps.Validator

	app.Get(Path, auth.RequirePermission(deps.Authz, auth.PermCategoriesView), s.List)
	app.Get(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermCategoriesView), s.Get)
	app.Post(Path, auth.RequirePermission(deps.Authz, auth.PermCategoriesCreate), s.Create)
	app.Put(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermCategoriesEdit), s.Update)
	app.Delete(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermCategoriesDelete), s.Delete)

	return nil
}

func categoryID(c fiber.Ctx) (uint, error) {
	id, err := handler.ParamID(c, "id")
	return uint(id), err
}

// List returns all categories.
func (s *Service) List(c fiber.Ctx) error {
	cats, err := catalog.ListCategories(c.Context(), s.db)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", cats)
}

// Get returns one category.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	cat, err := catalog.GetCategory(c.Context(), s.db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", cat)
}

// Create adds a category.
func (s *Service) Create(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	cat := &models.Category{Name: req.Name, Description: req.Description}
	if err := catalog.CreateCategory(c.Context(), s.db, cat); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("category_id", cat.ID).Str("name", cat.Name).Msg("category created")

	return handler.Created(c, "Category created successfully", cat)
}

// Update renames a category or changes its description.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	cat, err := catalog.UpdateCategory(c.Context(), s.db, id, req.Name, req.Description)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "Category updated successfully", cat)
}

// Delete removes a category. Its products are kept without a category.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := categoryID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	if err := catalog.DeleteCategory(c.Context(), s.db, id); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("category_id", id).Msg("category deleted")

	return handler.OK(c, "Category deleted successfully", nil)
}
