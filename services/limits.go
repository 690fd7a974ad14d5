package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// checkLength rejects values wider than their column, counted in characters
// as postgres does for varchar.
func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return errs.NewInvalidFieldError(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}

func checkTags(tags models.Tags) error {
	for _, tag := range tags {
		if err := checkLength("tags", tag, models.MaxTagLength); err != nil {
			return err
		}
	}
	return nil
}

func checkImageURL(url *string) error {
	if url == nil {
		return nil
	}
	return checkLength("image_url", *url, models.MaxImageURLLength)
}

// truncateSlug shortens a derived slug to the column width without leaving
// a trailing separator. Slugs are ASCII, so bytes are characters.
func truncateSlug(slug string) string {
	if len(slug) <= models.MaxSlugLength {
		return slug
	}
	return strings.TrimRight(slug[:models.MaxSlugLength], "-")
}
