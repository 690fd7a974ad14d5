package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/blog-backend/models"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindAll returns all categories ordered by id
func (r *CategoryRepo) FindAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error
	return categories, err
}

// FindByID returns a category by its ID, or nil when none exists.
func (r *CategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := primary(ctx, r.db).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Add inserts a new category into the database
func (r *CategoryRepo) Add(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

// Update updates an existing category in the database
func (r *CategoryRepo) Update(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Save(category).Error)
}

// Delete removes a category and detaches the posts that referenced it.
func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.BlogPost{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}
