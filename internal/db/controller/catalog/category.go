// Package catalog provides CRUD operations for products and categories.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/catalog-admin/catalog-admin/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryNameEmpty is returned when a category has no name.
	ErrCategoryNameEmpty = errors.New("category name cannot be empty")
	// ErrCategoryAlreadyExists is returned when a category name is taken.
	ErrCategoryAlreadyExists = errors.New("category already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *gorm.DB) ([]models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var categories []models.Category
	if err := db.WithContext(ctx).Order("name").Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by its ID.
func GetCategory(ctx context.Context, db *gorm.DB, id uint) (*models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var category models.Category

	err := db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// CreateCategory inserts a new category with a unique name.
func CreateCategory(ctx context.Context, db *gorm.DB, category *models.Category) error {
	if db == nil {
		return ErrDBNil
	}

	if category.Name == "" {
		return ErrCategoryNameEmpty
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryNameFree(tx, category.Name, 0); err != nil {
			return err
		}

		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		return nil
	})
}

// UpdateCategory changes name and description of category id.
func UpdateCategory(ctx context.Context, db *gorm.DB, id uint, name, description string) (*models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrCategoryNameEmpty
	}

	var category models.Category

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}

			return fmt.Errorf("failed to get category: %w", err)
		}

		if err := categoryNameFree(tx, name, id); err != nil {
			return err
		}

		category.Name = name
		category.Description = description

		if err := tx.Save(&category).Error; err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &category, nil
}

// DeleteCategory deletes a category by ID. Its products keep existing without a category.
func DeleteCategory(ctx context.Context, db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}

		return nil
	})
}

func categoryNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var n int64

	q := tx.Model(&models.Category{}).Where(nameQueryPattern, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}

	if n > 0 {
		return ErrCategoryAlreadyExists
	}

	return nil
}
