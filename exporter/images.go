package exporter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-kb-export/internal/logging"
)

// AttachmentFetcher retrieves raw attachment bytes plus the Content-Type.
type AttachmentFetcher interface {
	FetchBytes(ctx context.Context, attachmentID int) ([]byte, string, error)
}

// attachmentSrc matches both relative (/api/v1/attachments/46) and absolute
// (https://host/api/v1/attachments/46) image sources.
var attachmentSrc = regexp.MustCompile(`/api/v1/attachments/(\d+)`)

// extByContentType maps Content-Type subtypes to canonical file extensions.
// Content-Disposition is never consulted: Zammad sends RFC 6266 encoded
// filenames that are not safe to use directly.
var extByContentType = map[string]string{
	"jpeg":    "jpg",
	"jpg":     "jpg",
	"png":     "png",
	"gif":     "gif",
	"webp":    "webp",
	"svg+xml": "svg",
	"bmp":     "bmp",
	"tiff":    "tiff",
}

var safeSubtype = regexp.MustCompile(`^[a-z0-9]+$`)

// ImageRehomer extracts embedded knowledge-base images from an article
// body, downloads them, and rewrites their references to the local copies.
// Arbitrary external image URLs are left untouched.
type ImageRehomer struct {
	fetcher AttachmentFetcher
	writer  *Writer
	logger  logging.Logger
}

// NewImageRehomer builds a rehomer writing through the supplied writer.
func NewImageRehomer(fetcher AttachmentFetcher, writer *Writer, logger logging.Logger) *ImageRehomer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &ImageRehomer{fetcher: fetcher, writer: writer, logger: logger}
}

// Rehome scans html for <img> tags pointing at the attachment API and, in
// document order, downloads each to images/<articleSlug>-<n>.<ext> and
// rewrites the src to a relative path climbing depth directories back to
// the output root. A failed download warns and leaves the original src
// intact so no content is silently lost; a filesystem write failure is
// returned as a fatal error.
func (r *ImageRehomer) Rehome(ctx context.Context, articleSlug, html string, depth int) (string, int, []string, error) {
	if !attachmentSrc.MatchString(html) {
		return html, 0, nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", 0, nil, fmt.Errorf("exporter: parse body for images: %w", err)
	}

	prefix := strings.Repeat("../", depth) + imagesDirname + "/"

	var (
		ordinal    int
		downloaded int
		warnings   []string
		fatal      error
	)

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if fatal != nil {
			return
		}
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		match := attachmentSrc.FindStringSubmatch(src)
		if match == nil {
			return
		}

		ordinal++
		attachmentID, _ := strconv.Atoi(match[1])

		data, contentType, err := r.fetcher.FetchBytes(ctx, attachmentID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not download attachment %d: %v", attachmentID, err))
			r.logger.Warn("attachment download failed, leaving src unchanged", "attachment_id", attachmentID, "error", err)
			return
		}

		filename := fmt.Sprintf("%s-%d.%s", articleSlug, ordinal, extensionFor(contentType))
		if err := r.writer.WriteImage(filename, data); err != nil {
			fatal = err
			return
		}

		sel.SetAttr("src", prefix+filename)
		downloaded++
	})

	if fatal != nil {
		return "", downloaded, warnings, fatal
	}

	// goquery wraps fragments in a full document; the body's inner HTML is
	// the rewritten fragment.
	rewritten, err := doc.Find("body").Html()
	if err != nil {
		return "", downloaded, warnings, fmt.Errorf("exporter: serialize rewritten body: %w", err)
	}
	return rewritten, downloaded, warnings, nil
}

func extensionFor(contentType string) string {
	subtype := strings.TrimSpace(strings.ToLower(contentType))
	if idx := strings.IndexByte(subtype, ';'); idx >= 0 {
		subtype = subtype[:idx]
	}
	if idx := strings.LastIndexByte(subtype, '/'); idx >= 0 {
		subtype = subtype[idx+1:]
	}
	subtype = strings.TrimSpace(subtype)

	if ext, ok := extByContentType[subtype]; ok {
		return ext
	}
	if safeSubtype.MatchString(subtype) {
		return subtype
	}
	return "bin"
}
