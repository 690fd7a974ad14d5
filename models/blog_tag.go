package models

// BlogTag is the storage row for one tag of a blog post
type BlogTag struct {
	ID         uint   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	BlogPostID uint   `json:"blog_post_id" db:"blog_post_id" gorm:"not null;index:idx_blog_tag_blog_post_id;uniqueIndex:idx_blog_tag_unique"`
	Position   int    `json:"position" db:"position" gorm:"not null;default:0"`
	Value      string `json:"value" db:"value" gorm:"type:varchar(100);not null;uniqueIndex:idx_blog_tag_unique"`
}

// TagRows converts a tag set into storage rows for the given post.
func TagRows(postID uint, tags Tags) []BlogTag {
	rows := make([]BlogTag, 0, len(tags))
	for i, value := range tags {
		rows = append(rows, BlogTag{BlogPostID: postID, Position: i, Value: value})
	}
	return rows
}
