package models

import (
	"time"
)

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID         uint      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title      string    `json:"title" db:"title" gorm:"type:varchar(255);not null"`
	Slug       string    `json:"slug" db:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_blog_posts_slug"`
	Content    string    `json:"content" db:"content" gorm:"type:text;not null"`
	AuthorID   uint      `json:"author_id" db:"author_id" gorm:"not null;index"`
	CategoryID *uint     `json:"category_id,omitempty" db:"category_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Published  bool      `json:"published" db:"published" gorm:"not null;default:false"`
	Views      int64     `json:"views" db:"views" gorm:"not null;default:0"`
	ImageURL   *string   `json:"image_url,omitempty" db:"image_url" gorm:"type:varchar(500)"`

	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;references:ID"`
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	TagRows  []BlogTag `json:"-" gorm:"foreignKey:BlogPostID;references:ID;constraint:OnDelete:CASCADE"`
}

// Tags returns the post's tag set in stored order.
func (p *BlogPost) Tags() Tags {
	values := make([]string, 0, len(p.TagRows))
	for _, row := range p.TagRows {
		values = append(values, row.Value)
	}
	return NewTags(values...)
}

// AuthorName returns the author's username when the relation was preloaded.
func (p *BlogPost) AuthorName() string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Username
}
