package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductAlreadyExists is returned when a SKU is taken.
	ErrProductAlreadyExists = errors.New("product with this sku already exists")
)

// ProductFilter narrows ListProducts. Zero values do not filter.
type ProductFilter struct {
	CategoryID *uint
	Search     string // matched against sku, name and description
}

// ListProducts returns products with their category ordered by name.
func ListProducts(ctx context.Context, db *gorm.DB, f ProductFilter) ([]models.Product, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.WithContext(ctx).Preload("Category").Order("name").Order("id")

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("sku LIKE ? OR name LIKE ? OR description LIKE ?", like, like, like)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a product with its category.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*models.Product, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var product models.Product

	err := db.WithContext(ctx).Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// CreateProduct inserts product. The SKU must be unused and the category, when set, must exist.
func CreateProduct(ctx context.Context, db *gorm.DB, product *models.Product) error {
	if db == nil {
		return ErrDBNil
	}

	product.Category = nil

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkProduct(tx, product, 0); err != nil {
			return err
		}

		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return tx.Preload("Category").First(product, product.ID).Error
	})
}

// UpdateProduct replaces the editable fields of product id with those of upd.
func UpdateProduct(ctx context.Context, db *gorm.DB, id uint, upd *models.Product) (*models.Product, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var product models.Product

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}

			return fmt.Errorf("failed to get product: %w", err)
		}

		if err := checkProduct(tx, upd, id); err != nil {
			return err
		}

		err := tx.Model(&product).Updates(map[string]any{
			"sku":         upd.SKU,
			"name":        upd.Name,
			"description": upd.Description,
			"price_cents": upd.PriceCents,
			"category_id": upd.CategoryID,
			"active":      upd.Active,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		return tx.Preload("Category").First(&product, id).Error
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &product, nil
}

// DeleteProduct deletes a product by ID.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func checkProduct(tx *gorm.DB, p *models.Product, exceptID uint) error {
	var n int64

	q := tx.Model(&models.Product{}).Where("sku = ?", p.SKU)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}

	if n > 0 {
		return ErrProductAlreadyExists
	}

	if p.CategoryID == nil {
		return nil
	}

	if err := tx.Model(&models.Category{}).Where("id = ?", *p.CategoryID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}

	if n == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
