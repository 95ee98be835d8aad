// Package exporter orchestrates the knowledge-base export pipeline:
// category tree reconstruction, per-article content extraction, image
// rehoming, and deterministic file-tree materialization.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-kb-export/internal/logging"
	"github.com/goliatone/go-kb-export/kbtree"
	"github.com/goliatone/go-kb-export/markdown"
	"github.com/goliatone/go-kb-export/zammad"
)

var (
	ErrClientRequired    = errors.New("exporter: knowledge-base client is required")
	ErrWriterRequired    = errors.New("exporter: writer is required")
	ErrConverterRequired = errors.New("exporter: markdown converter is required")
)

// Article status values. Zammad tracks article state via nullable
// timestamps rather than an enum; resolveStatus derives these.
const (
	StatusDraft     = "draft"
	StatusInternal  = "internal"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// KnowledgeBaseClient is the slice of the API client the pipeline consumes.
type KnowledgeBaseClient interface {
	ListCategories(ctx context.Context, kbID int) ([]zammad.Category, error)
	Answer(ctx context.Context, kbID, answerID int) (*zammad.AnswerEnvelope, error)
	AnswerContents(ctx context.Context, kbID, answerID, translationID int) (*zammad.AnswerEnvelope, error)
}

// TagSource resolves per-article tags, degrading instead of failing.
type TagSource interface {
	TagsFor(ctx context.Context, answerID int) ([]string, error)
}

// BodyConverter renders an HTML article body as Markdown.
type BodyConverter interface {
	Convert(html string) (string, error)
}

var _ BodyConverter = (*markdown.Converter)(nil)

// Config carries the already-validated pipeline settings.
type Config struct {
	KnowledgeBaseID int
	// Frontmatter toggles the YAML metadata block on every output file.
	Frontmatter bool
}

// Dependencies encapsulates the collaborators the pipeline is wired with.
type Dependencies struct {
	Client      KnowledgeBaseClient
	Attachments AttachmentFetcher
	Tags        TagSource
	Converter   BodyConverter
	Writer      *Writer
	Logger      logging.Logger
}

// Exporter runs the export pipeline. Execution is a single logical thread:
// every network call blocks, and the client's rate gate spaces them.
type Exporter struct {
	client      KnowledgeBaseClient
	tags        TagSource
	converter   BodyConverter
	writer      *Writer
	images      *ImageRehomer
	logger      logging.Logger
	kbID        int
	frontmatter bool

	// answers caches step-1 envelopes from the prefetch pass; titles maps
	// category translation ids to the titles harvested from answer assets.
	answers map[int]*zammad.AnswerEnvelope
	titles  map[int]string
}

// New validates dependencies and builds an Exporter.
func New(cfg Config, deps Dependencies) (*Exporter, error) {
	if deps.Client == nil {
		return nil, ErrClientRequired
	}
	if deps.Writer == nil {
		return nil, ErrWriterRequired
	}
	if deps.Converter == nil {
		return nil, ErrConverterRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	tags := deps.Tags
	if tags == nil {
		tags = noTags{}
	}

	return &Exporter{
		client:      deps.Client,
		tags:        tags,
		converter:   deps.Converter,
		writer:      deps.Writer,
		images:      NewImageRehomer(deps.Attachments, deps.Writer, logger),
		logger:      logger,
		kbID:        cfg.KnowledgeBaseID,
		frontmatter: cfg.Frontmatter,
		answers:     map[int]*zammad.AnswerEnvelope{},
		titles:      map[int]string{},
	}, nil
}

// Run exports the whole knowledge base. Fatal errors (auth, category-graph
// integrity, retry exhaustion, filesystem writes) abort immediately,
// leaving whatever subset of the tree was already written; per-article and
// tag degradations are accumulated on the report instead.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	categories, err := e.client.ListCategories(ctx, e.kbID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("fetched categories", "count", len(categories))

	byID := make(map[int]zammad.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	// Prefetch every answer's metadata before writing a single file:
	// category titles only appear inside answer assets, so folder names
	// cannot be resolved until the whole set has been seen.
	if err := e.prefetch(ctx, categories); err != nil {
		return nil, err
	}

	flat := make([]kbtree.Category, 0, len(categories))
	for _, category := range categories {
		flat = append(flat, kbtree.Category{
			ID:       category.ID,
			ParentID: category.ParentID,
			Slug:     Slugify(e.categoryTitle(category)),
		})
	}
	tree, err := kbtree.Build(flat)
	if err != nil {
		return nil, err
	}

	for _, node := range tree.Ordered() {
		category := byID[node.ID]
		title := e.categoryTitle(category)
		e.logger.Info("exporting category", "id", node.ID, "path", strings.Join(node.Path, "/"))

		if err := e.writeCategory(node, title); err != nil {
			return nil, err
		}
		report.Categories++

		siblings := map[string]int{}
		for _, answerID := range category.AnswerIDs {
			if err := e.exportAnswer(ctx, node, answerID, siblings, report); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Info("export finished",
		"categories", report.Categories,
		"articles", report.Articles,
		"images", report.Images,
		"skipped", report.SkippedArticles,
		"warnings", len(report.Warnings))
	return report, nil
}

// prefetch fetches the step-1 metadata for every answer and harvests the
// category titles side-loaded in each response.
func (e *Exporter) prefetch(ctx context.Context, categories []zammad.Category) error {
	for _, category := range categories {
		for _, answerID := range category.AnswerIDs {
			if _, ok := e.answers[answerID]; ok {
				continue
			}
			envelope, err := e.client.Answer(ctx, e.kbID, answerID)
			if err != nil {
				if zammad.IsNotFound(err) {
					// Vanished between listing and fetch; the export pass
					// reports it as skipped.
					continue
				}
				return err
			}
			e.answers[answerID] = envelope
			e.harvestTitles(envelope.Assets)
		}
	}
	return nil
}

func (e *Exporter) harvestTitles(assets zammad.Assets) {
	for key, translation := range assets.CategoryTranslations {
		if strings.TrimSpace(translation.Title) == "" {
			continue
		}
		id := translation.ID
		if id == 0 {
			id, _ = strconv.Atoi(key)
		}
		if id != 0 {
			e.titles[id] = translation.Title
		}
	}
}

// categoryTitle resolves the best available title for a category. Titles
// come from the prefetch cache; categories with no answers anywhere in
// their subtree never appear in any answer's assets and fall back to a
// stable placeholder.
func (e *Exporter) categoryTitle(category zammad.Category) string {
	for _, tid := range category.TranslationIDs {
		if title, ok := e.titles[tid]; ok {
			return title
		}
	}
	return fmt.Sprintf("category-%d", category.ID)
}

func (e *Exporter) writeCategory(node *kbtree.Node, title string) error {
	heading := "# " + title + "\n"
	content := heading
	if e.frontmatter {
		block, err := markdown.RenderCategory(markdown.CategoryFrontMatter{
			Title:    title,
			ZammadID: node.ID,
		})
		if err != nil {
			return err
		}
		content = block + "\n\n" + heading
	}
	return e.writer.WriteCategoryIndex(node.Path, content)
}

func (e *Exporter) exportAnswer(ctx context.Context, node *kbtree.Node, answerID int, siblings map[string]int, report *Report) error {
	envelope, ok := e.answers[answerID]
	if !ok {
		// Added between prefetch and export; fetch it now.
		fetched, err := e.client.Answer(ctx, e.kbID, answerID)
		if err != nil {
			if zammad.IsNotFound(err) {
				report.skipf("answer %d: no longer exists upstream", answerID)
				return nil
			}
			return err
		}
		envelope = fetched
		e.answers[answerID] = envelope
		e.harvestTitles(envelope.Assets)
	}

	meta, ok := envelope.Assets.Answer(answerID)
	if !ok {
		report.skipf("answer %d: metadata missing from assets", answerID)
		return nil
	}
	if len(meta.TranslationIDs) == 0 {
		report.skipf("answer %d: no translations", answerID)
		return nil
	}

	// Pick the first translation with a non-empty title. Multi-locale
	// export is out of scope; the first hit wins.
	title := fmt.Sprintf("Answer %d", answerID)
	chosen := meta.TranslationIDs[0]
	for _, tid := range meta.TranslationIDs {
		if translation, ok := envelope.Assets.AnswerTranslation(tid); ok && strings.TrimSpace(translation.Title) != "" {
			title = translation.Title
			chosen = tid
			break
		}
	}

	slug := uniqueSlug(Slugify(title), siblings)

	contents, err := e.client.AnswerContents(ctx, e.kbID, answerID, chosen)
	if err != nil {
		if zammad.IsNotFound(err) {
			report.skipf("answer %d: no longer exists upstream", answerID)
			return nil
		}
		return err
	}

	var bodyHTML string
	if content, ok := contents.Assets.Content(chosen); ok {
		bodyHTML = content.Body
	}

	var downloaded int
	if bodyHTML != "" {
		// Rewrite before converting: the converter turns the rewritten
		// relative srcs into proper Markdown image references.
		rewritten, n, warnings, err := e.images.Rehome(ctx, slug, bodyHTML, len(node.Path))
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			report.warnf("answer %d: %s", answerID, warning)
		}
		bodyHTML = rewritten
		downloaded = n
	}

	body, err := e.converter.Convert(bodyHTML)
	if err != nil {
		report.skipf("answer %d (%s): body conversion failed: %v", answerID, title, err)
		return nil
	}

	// Tags last: the article is written even when tags degrade.
	tags, warning := e.tags.TagsFor(ctx, answerID)
	if warning != nil {
		report.warnf("answer %d: %v", answerID, warning)
	}

	var parts []string
	if e.frontmatter {
		block, err := markdown.RenderArticle(markdown.ArticleFrontMatter{
			Title:       title,
			Slug:        slug,
			ZammadID:    answerID,
			Status:      resolveStatus(meta),
			Category:    strings.Join(node.Path, "/"),
			Tags:        tags,
			Promoted:    meta.Promoted,
			PublishedAt: meta.PublishedAt,
			InternalAt:  meta.InternalAt,
			ArchivedAt:  meta.ArchivedAt,
			UpdatedAt:   meta.UpdatedAt,
		})
		if err != nil {
			return err
		}
		parts = append(parts, block)
	}
	parts = append(parts, "# "+title)
	if body != "" {
		parts = append(parts, body)
	}

	if err := e.writer.WriteArticle(node.Path, slug, strings.Join(parts, "\n\n")+"\n"); err != nil {
		return err
	}
	report.Articles++
	report.Images += downloaded
	return nil
}

// resolveStatus prefers an explicit upstream status field and otherwise
// derives the status from the visibility timestamps.
func resolveStatus(meta zammad.AnswerMeta) string {
	switch strings.ToLower(strings.TrimSpace(meta.Status)) {
	case StatusDraft, StatusInternal, StatusPublished, StatusArchived:
		return strings.ToLower(strings.TrimSpace(meta.Status))
	}

	switch {
	case meta.PublishedAt != nil:
		return StatusPublished
	case meta.InternalAt != nil:
		return StatusInternal
	case meta.ArchivedAt != nil:
		return StatusArchived
	default:
		return StatusDraft
	}
}

// uniqueSlug reserves base within its category, appending -2, -3, … in
// encounter order on collision so repeated runs produce identical names.
func uniqueSlug(base string, seen map[string]int) string {
	if seen[base] == 0 {
		seen[base] = 1
		return base
	}
	for n := seen[base] + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if seen[candidate] == 0 {
			seen[base] = n
			seen[candidate] = 1
			return candidate
		}
	}
}

type noTags struct{}

func (noTags) TagsFor(context.Context, int) ([]string, error) { return nil, nil }
