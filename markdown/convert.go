// Package markdown converts Zammad's answer body HTML into Markdown and
// renders the YAML frontmatter blocks the output files carry.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// Heading styles. ATX renders `## Title`; setext underlines level 1 and 2
// headings. Both are structurally equivalent Markdown.
const (
	HeadingATX    = "atx"
	HeadingSetext = "setext"
)

// ConverterConfig configures body conversion.
type ConverterConfig struct {
	// HeadingStyle is HeadingATX (default) or HeadingSetext. The values
	// "ATX" and "underline" are accepted as aliases.
	HeadingStyle string
}

// Converter renders HTML bodies as Markdown. The converter is stateless and
// safe to reuse across articles.
type Converter struct {
	conv *md.Converter
}

// NormalizeHeadingStyle maps configuration aliases onto the canonical
// heading style constants.
func NormalizeHeadingStyle(style string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "atx":
		return HeadingATX, nil
	case "setext", "underline", "underlined":
		return HeadingSetext, nil
	default:
		return "", fmt.Errorf("markdown: unsupported heading style %q", style)
	}
}

// NewConverter builds a Converter with GFM extensions (tables,
// strikethrough, task lists), dash bullets, and fenced code blocks.
func NewConverter(cfg ConverterConfig) (*Converter, error) {
	style, err := NormalizeHeadingStyle(cfg.HeadingStyle)
	if err != nil {
		return nil, err
	}

	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     style,
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
	})
	conv.Use(plugin.GitHubFlavored())

	return &Converter{conv: conv}, nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Convert renders HTML into Markdown. Block elements map to their
// canonical Markdown equivalents and inline formatting is preserved; runs
// of three or more blank lines left around block elements are collapsed.
// Empty input yields empty output.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("markdown: convert body: %w", err)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(result, "\n\n")), nil
}
