package exporter

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Fleet Operations", "fleet-operations"},
		{"punctuation stripped", "Navigating by the Stars!", "navigating-by-the-stars"},
		{"mixed case", "Standing RIGGING Checks", "standing-rigging-checks"},
		{"surrounding space", "  Gunnery  ", "gunnery"},
		{"empty input", "", "untitled"},
		{"symbols only", "***", "untitled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.input); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSlugifyTruncatesAtHyphenBoundary(t *testing.T) {
	long := strings.Repeat("ballistics ", 20)
	got := Slugify(long)

	if len(got) > maxSlugLength {
		t.Fatalf("slug length = %d, want <= %d", len(got), maxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug %q ends with a hyphen", got)
	}
	if !strings.HasPrefix(got, "ballistics-ballistics") {
		t.Fatalf("slug %q lost its leading words", got)
	}
}

func TestUniqueSlug(t *testing.T) {
	seen := map[string]int{}

	if got := uniqueSlug("loading-procedures", seen); got != "loading-procedures" {
		t.Fatalf("first slug = %q, want %q", got, "loading-procedures")
	}
	if got := uniqueSlug("loading-procedures", seen); got != "loading-procedures-2" {
		t.Fatalf("second slug = %q, want %q", got, "loading-procedures-2")
	}
	if got := uniqueSlug("loading-procedures", seen); got != "loading-procedures-3" {
		t.Fatalf("third slug = %q, want %q", got, "loading-procedures-3")
	}
	if got := uniqueSlug("rigging", seen); got != "rigging" {
		t.Fatalf("unrelated slug = %q, want %q", got, "rigging")
	}
}
