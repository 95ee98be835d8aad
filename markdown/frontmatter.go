package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArticleFrontMatter is the metadata block written ahead of every article
// body. Field order is fixed by the struct. Nil timestamps mean "the
// article never reached that state" and are omitted rather than fabricated;
// promoted is always written because false is meaningful to templates.
type ArticleFrontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	ZammadID    int      `yaml:"zammad_id"`
	Status      string   `yaml:"status"`
	Category    string   `yaml:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Promoted    bool     `yaml:"promoted"`
	PublishedAt *string  `yaml:"published_at,omitempty"`
	InternalAt  *string  `yaml:"internal_at,omitempty"`
	ArchivedAt  *string  `yaml:"archived_at,omitempty"`
	UpdatedAt   *string  `yaml:"updated_at,omitempty"`
}

// CategoryFrontMatter is the metadata block of a category landing page.
// None of the article fields apply here.
type CategoryFrontMatter struct {
	Title    string `yaml:"title"`
	ZammadID int    `yaml:"zammad_id"`
	Layout   string `yaml:"layout"`
}

// RenderArticle renders an article frontmatter block delimited by ---.
func RenderArticle(fm ArticleFrontMatter) (string, error) {
	return renderBlock(fm)
}

// RenderCategory renders a category landing frontmatter block. Layout
// defaults to "category" when unset.
func RenderCategory(fm CategoryFrontMatter) (string, error) {
	if strings.TrimSpace(fm.Layout) == "" {
		fm.Layout = "category"
	}
	return renderBlock(fm)
}

func renderBlock(v any) (string, error) {
	encoded, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("markdown: render frontmatter: %w", err)
	}
	return "---\n" + string(encoded) + "---", nil
}
