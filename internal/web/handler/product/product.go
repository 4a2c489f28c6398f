// Package product serves the product catalog API.
package product

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/db/controller/catalog"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
)

// Path is the base path of the product API.
const Path = handler.APIPath + "/products"

// Request is the body of create and update.
type Request struct {
	SKU         string `json:"sku" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	CategoryID  *uint  `json:"category_id" validate:"omitempty,min=1"`
	Active      *bool  `json:"active"`
}

func (r *Request) model() *models.Product {
	return &models.Product{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		CategoryID:  r.CategoryID,
		Active:      r.Active == nil || *r.Active,
	}
}

// Service is the product handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, each guarded by its products.* permission.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.validator = deps.Validator

	app.Get(Path, auth.RequirePermission(deps.Authz, auth.PermProductsView), s.List)
	app.Get(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermProductsView), s.Get)
	app.Post(Path, auth.RequirePermission(deps.Authz, auth.PermProductsCreate), s.Create)
	app.Put(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermProductsEdit), s.Update)
	app.Delete(Path+"/:id", auth.RequirePermission(deps.Authz, auth.PermProductsDelete), s.Delete)

	return nil
}

func productID(c fiber.Ctx) (uint, error) {
	id, err := handler.ParamID(c, "id")
	return uint(id), err
}

// List returns products, optionally filtered by ?category_id= and ?search=.
func (s *Service) List(c fiber.Ctx) error {
	f := catalog.ProductFilter{Search: c.Query("search")}

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			return handler.Error(c, handler.Invalid("category_id", "must be a positive integer"))
		}

		categoryID := uint(id)
		f.CategoryID = &categoryID
	}

	products, err := catalog.ListProducts(c.Context(), s.db, f)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", products)
}

// Get returns one product.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	p, err := catalog.GetProduct(c.Context(), s.db, id)
	if err != nil {
		return handler.Error(c, err)
	}

	return handler.OK(c, "", p)
}

// Create adds a product.
func (s *Service) Create(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	p := req.model()
	if err := catalog.CreateProduct(c.Context(), s.db, p); err != nil {
		return handler.Error(c, handler.AsValidation(err, "category_id", catalog.ErrCategoryNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("product_id", p.ID).Str("sku", p.SKU).Msg("product created")

	return handler.Created(c, "Product created successfully", p)
}

// Update replaces a product's fields.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	p, err := catalog.UpdateProduct(c.Context(), s.db, id, req.model())
	if err != nil {
		return handler.Error(c, handler.AsValidation(err, "category_id", catalog.ErrCategoryNotFound))
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("product_id", id).Msg("product updated")

	return handler.OK(c, "Product updated successfully", p)
}

// Delete removes a product.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return handler.Error(c, err)
	}

	if err := catalog.DeleteProduct(c.Context(), s.db, id); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("by", auth.UserID(c)).Uint("product_id", id).Msg("product deleted")

	return handler.OK(c, "Product deleted successfully", nil)
}
