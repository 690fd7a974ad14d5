package models

// Widths of the varchar columns filled from request input. They mirror the
// gorm type tags on the models.
const (
	MaxUsernameLength = 80
	MaxEmailLength    = 120
	MaxTitleLength    = 255
	MaxSlugLength     = 255
	MaxImageURLLength = 500
	MaxTagLength      = 100
	MaxCategoryLength = 100
)
