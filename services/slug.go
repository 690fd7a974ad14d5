package services

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe identifier from a title: lowercase ASCII letters
// and digits separated by single hyphens. Non-Latin scripts are transliterated
// to ASCII first. It returns "" when nothing usable remains.
func Slugify(title string) string {
	s := norm.NFKC.String(title)
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
