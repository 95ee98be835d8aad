package markdown

import (
	"strings"
	"testing"

	"github.com/adrg/frontmatter"
)

func strPtr(v string) *string { return &v }

func TestRenderArticleFieldOrderAndOmissions(t *testing.T) {
	block, err := RenderArticle(ArticleFrontMatter{
		Title:       "Navigating by the Stars",
		Slug:        "navigating-by-the-stars",
		ZammadID:    501,
		Status:      "published",
		Category:    "fleet-operations",
		Tags:        []string{"navigation"},
		PublishedAt: strPtr("2024-05-01T10:00:00Z"),
		UpdatedAt:   strPtr("2024-06-01T10:00:00Z"),
	})
	if err != nil {
		t.Fatalf("RenderArticle() returned unexpected error: %v", err)
	}

	if !strings.HasPrefix(block, "---\n") || !strings.HasSuffix(block, "---") {
		t.Fatalf("expected --- delimiters, got:\n%s", block)
	}
	for _, absent := range []string{"internal_at", "archived_at"} {
		if strings.Contains(block, absent) {
			t.Fatalf("expected %s to be omitted, got:\n%s", absent, block)
		}
	}
	// promoted: false is meaningful to templates and must not be omitted.
	if !strings.Contains(block, "promoted: false") {
		t.Fatalf("expected promoted: false, got:\n%s", block)
	}

	titleIdx := strings.Index(block, "title:")
	statusIdx := strings.Index(block, "status:")
	promotedIdx := strings.Index(block, "promoted:")
	if titleIdx == -1 || statusIdx == -1 || promotedIdx == -1 {
		t.Fatalf("missing expected fields in:\n%s", block)
	}
	if !(titleIdx < statusIdx && statusIdx < promotedIdx) {
		t.Fatalf("unexpected field order in:\n%s", block)
	}
}

func TestRenderArticleOmitsEmptyCategoryAndTags(t *testing.T) {
	block, err := RenderArticle(ArticleFrontMatter{
		Title:    "Root Article",
		Slug:     "root-article",
		ZammadID: 7,
		Status:   "draft",
	})
	if err != nil {
		t.Fatalf("RenderArticle() returned unexpected error: %v", err)
	}
	if strings.Contains(block, "category:") {
		t.Fatalf("expected category omitted for root articles, got:\n%s", block)
	}
	if strings.Contains(block, "tags:") {
		t.Fatalf("expected tags omitted when empty, got:\n%s", block)
	}
}

func TestRenderedArticleRoundTrips(t *testing.T) {
	block, err := RenderArticle(ArticleFrontMatter{
		Title:    "Signal Flags",
		Slug:     "signal-flags",
		ZammadID: 12,
		Status:   "internal",
		Category: "fleet-operations/signals",
		Tags:     []string{"flags", "protocol"},
		Promoted: true,
	})
	if err != nil {
		t.Fatalf("RenderArticle() returned unexpected error: %v", err)
	}

	document := block + "\n\n# Signal Flags\n\nBody text.\n"

	var parsed struct {
		Title    string   `yaml:"title"`
		Slug     string   `yaml:"slug"`
		ZammadID int      `yaml:"zammad_id"`
		Status   string   `yaml:"status"`
		Category string   `yaml:"category"`
		Tags     []string `yaml:"tags"`
		Promoted bool     `yaml:"promoted"`
	}
	body, err := frontmatter.Parse(strings.NewReader(document), &parsed)
	if err != nil {
		t.Fatalf("frontmatter.Parse() returned unexpected error: %v", err)
	}

	if parsed.Title != "Signal Flags" || parsed.Slug != "signal-flags" || parsed.ZammadID != 12 {
		t.Fatalf("unexpected parsed frontmatter: %+v", parsed)
	}
	if parsed.Category != "fleet-operations/signals" || !parsed.Promoted {
		t.Fatalf("unexpected parsed frontmatter: %+v", parsed)
	}
	if len(parsed.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", parsed.Tags)
	}
	if !strings.Contains(string(body), "# Signal Flags") {
		t.Fatalf("expected body after frontmatter, got %q", body)
	}
}

func TestRenderCategoryDefaultsLayout(t *testing.T) {
	block, err := RenderCategory(CategoryFrontMatter{Title: "Fleet Operations", ZammadID: 10})
	if err != nil {
		t.Fatalf("RenderCategory() returned unexpected error: %v", err)
	}
	for _, want := range []string{"title: Fleet Operations", "zammad_id: 10", "layout: category"} {
		if !strings.Contains(block, want) {
			t.Fatalf("expected %q in:\n%s", want, block)
		}
	}
}
