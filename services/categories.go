package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateCategoryInput struct {
	Name        *string       `json:"name"`
	Description Field[string] `json:"description"`
}

// CategoryService manages categories. Every mutation is admin only.
type CategoryService struct {
	categories CategoryStore
	logger     zerolog.Logger
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{
		categories: categories,
		logger:     log.With().Str("service", "categories").Logger(),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, caller auth.Identity, in CreateCategoryInput) (*models.Category, error) {
	if err := auth.CanManageCategories(caller); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.NewBadRequestError("Category name is required")
	}
	if err := checkLength("name", name, models.MaxCategoryLength); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Description: in.Description}
	if err := s.categories.Add(ctx, category); err != nil {
		return nil, errs.NewDatabaseError("create", "category", err)
	}

	s.logger.Info().Uint("categoryID", category.ID).Str("name", name).Msg("Category created")
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, caller auth.Identity, id uint, in UpdateCategoryInput) (*models.Category, error) {
	if err := auth.CanManageCategories(caller); err != nil {
		return nil, err
	}

	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, errs.NewBadRequestError("Category name is required")
		}
		if err := checkLength("name", name, models.MaxCategoryLength); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if in.Description.Set {
		category.Description = in.Description.Ptr()
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, errs.NewDatabaseError("update", "category", err)
	}
	return category, nil
}

// Delete removes a category. Posts in it become uncategorised.
func (s *CategoryService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	if err := auth.CanManageCategories(caller); err != nil {
		return err
	}

	category, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return errs.NewDatabaseError("delete", "category", err)
	}

	s.logger.Info().Uint("categoryID", category.ID).Msg("Category deleted")
	return nil
}

func (s *CategoryService) find(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "category", err)
	}
	if category == nil {
		return nil, errs.NewNotFoundError("Category not found")
	}
	return category, nil
}
