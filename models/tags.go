package models

import "strings"

// Tags is an ordered set of tag values. Values are trimmed, blanks are dropped
// and later duplicates are ignored.
type Tags []string

// NewTags builds a normalized tag set from raw values.
func NewTags(values ...string) Tags {
	tags := make(Tags, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}
	return tags
}

// Contains reports whether value is in the set.
func (t Tags) Contains(value string) bool {
	for _, v := range t {
		if v == value {
			return true
		}
	}
	return false
}

// Strings returns the tags as a plain slice, never nil, so it encodes as [].
func (t Tags) Strings() []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}
