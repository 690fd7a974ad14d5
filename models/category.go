package models

// Category groups blog posts. Only admins may change categories.
type Category struct {
	ID          uint    `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" db:"name" gorm:"type:varchar(100);not null"`
	Description *string `json:"description" db:"description" gorm:"type:text"`
}
