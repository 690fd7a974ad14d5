package services

import (
	"context"

	"github.com/rpupo63/blog-backend/models"
)

// UserStore is the credential store. Finders return nil, nil when nothing matches.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetRole(ctx context.Context, id uint, role string) error
}

// PostStore persists blog posts and their tags.
type PostStore interface {
	FindPublished(ctx context.Context) ([]*models.BlogPost, error)
	FindByID(ctx context.Context, id uint) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Add(ctx context.Context, post *models.BlogPost, tags models.Tags) error
	Update(ctx context.Context, post *models.BlogPost, tags models.Tags) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) (*models.BlogPost, error)
}

type CategoryStore interface {
	FindAll(ctx context.Context) ([]*models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	Add(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}
