package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/blog-backend/models"
)

type BlogTagRepo struct {
	db *gorm.DB
}

func NewBlogTagRepo(db *gorm.DB) *BlogTagRepo {
	return &BlogTagRepo{db}
}

// FindByPost returns the tag rows of a post in stored order.
func (r *BlogTagRepo) FindByPost(ctx context.Context, postID uint) ([]models.BlogTag, error) {
	var rows []models.BlogTag
	err := r.db.WithContext(ctx).
		Where("blog_post_id = ?", postID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// Replace swaps the post's tag set for tags. Callers wanting atomicity with
// other writes pass a repo built on a transaction.
func (r *BlogTagRepo) Replace(ctx context.Context, postID uint, tags models.Tags) error {
	if err := r.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	rows := models.TagRows(postID, tags)
	if len(rows) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

// DeleteByPost removes every tag of a post.
func (r *BlogTagRepo) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("blog_post_id = ?", postID).Delete(&models.BlogTag{}).Error
}
