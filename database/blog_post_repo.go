package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/blog-backend/models"
)

// editableColumns are the columns a post update may write. views is
// deliberately absent so concurrent reads are never overwritten.
var editableColumns = []string{"title", "content", "category_id", "published", "image_url", "updated_at"}

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("TagRows", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// FindPublished returns every published post, newest first.
func (r *BlogPostRepo) FindPublished(ctx context.Context) ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	err := withRelations(r.db.WithContext(ctx)).
		Where("published = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&blogPosts).Error
	return blogPosts, err
}

// FindByID returns a blog post regardless of its published state, or nil.
// Updates and deletes look posts up here, so it reads from the primary.
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := withRelations(primary(ctx, r.db)).First(&blogPost, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &blogPost, nil
}

func (r *BlogPostRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := primary(ctx, r.db).Model(&models.BlogPost{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Add inserts a post and its tags in one transaction.
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost, tags models.Tags) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(blogPost).Error; err != nil {
			return err
		}
		return NewBlogTagRepo(tx).Replace(ctx, blogPost.ID, tags)
	})
	if err != nil {
		return translate(err)
	}
	blogPost.TagRows = models.TagRows(blogPost.ID, tags)
	return nil
}

// Update writes the editable columns of blogPost. A nil tags keeps the stored
// set; any non-nil value, even empty, replaces it.
func (r *BlogPostRepo) Update(ctx context.Context, blogPost *models.BlogPost, tags models.Tags) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(blogPost).
			Omit(clause.Associations).
			Select(editableColumns).
			Updates(blogPost).Error
		if err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		return NewBlogTagRepo(tx).Replace(ctx, blogPost.ID, tags)
	})
	return translate(err)
}

// Delete removes a blog post and its tags.
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewBlogTagRepo(tx).DeleteByPost(ctx, id); err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, id).Error
	})
}

// IncrementViews adds one view to a published post and returns the refreshed
// post from the same transaction. It returns nil when no published post has id.
func (r *BlogPostRepo) IncrementViews(ctx context.Context, id uint) (*models.BlogPost, error) {
	var blogPost *models.BlogPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BlogPost{}).
			Where("id = ? AND published = ?", id, true).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		var err error
		blogPost, err = NewBlogPostRepo(tx).FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blogPost, nil
}
