package exporter

import (
	"strings"

	slug "github.com/goliatone/go-slug"
)

// maxSlugLength bounds slugs so deeply nested paths stay filesystem-safe.
const maxSlugLength = 80

// Slugify derives a URL-safe slug from text. Empty or all-symbol input
// falls back to "untitled"; overlong slugs are cut at a hyphen boundary.
func Slugify(text string) string {
	normalized, err := slug.Normalize(strings.TrimSpace(text))
	if err != nil || normalized == "" {
		return "untitled"
	}

	if len(normalized) > maxSlugLength {
		normalized = normalized[:maxSlugLength]
		if idx := strings.LastIndexByte(normalized, '-'); idx > 0 {
			normalized = normalized[:idx]
		}
		normalized = strings.Trim(normalized, "-")
		if normalized == "" {
			return "untitled"
		}
	}

	return normalized
}
