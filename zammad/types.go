package zammad

import "strconv"

// KnowledgeBase is the upstream knowledge-base record. Only the fields the
// exporter consumes are decoded.
type KnowledgeBase struct {
	ID          int   `json:"id"`
	CategoryIDs []int `json:"category_ids"`
}

// Category is one node of the flat category list. Titles are NOT present on
// this record; they only appear inside answer assets under
// KnowledgeBaseCategoryTranslation, keyed by the ids in TranslationIDs.
type Category struct {
	ID             int   `json:"id"`
	ParentID       *int  `json:"parent_id"`
	Position       int   `json:"position"`
	TranslationIDs []int `json:"translation_ids"`
	AnswerIDs      []int `json:"answer_ids"`
	ChildIDs       []int `json:"child_ids"`
}

// AnswerEnvelope is the response shape of both answer calls: the step-1
// metadata fetch and the step-2 ?include_contents body fetch.
type AnswerEnvelope struct {
	ID     int    `json:"id"`
	Assets Assets `json:"assets"`
}

// Assets is Zammad's side-loaded record payload. Keys are stringified
// integer ids even though the referenced ids are integers.
type Assets struct {
	Answers              map[string]AnswerMeta          `json:"KnowledgeBaseAnswer"`
	AnswerTranslations   map[string]AnswerTranslation   `json:"KnowledgeBaseAnswerTranslation"`
	Contents             map[string]AnswerContent       `json:"KnowledgeBaseAnswerTranslationContent"`
	CategoryTranslations map[string]CategoryTranslation `json:"KnowledgeBaseCategoryTranslation"`
}

// AnswerMeta carries the answer's visibility timestamps and references.
// Status is decoded for API versions that expose an explicit state field;
// it is empty otherwise and callers fall back to the timestamps.
type AnswerMeta struct {
	ID             int     `json:"id"`
	CategoryID     int     `json:"category_id"`
	Promoted       bool    `json:"promoted"`
	Status         string  `json:"status"`
	PublishedAt    *string `json:"published_at"`
	InternalAt     *string `json:"internal_at"`
	ArchivedAt     *string `json:"archived_at"`
	UpdatedAt      *string `json:"updated_at"`
	TranslationIDs []int   `json:"translation_ids"`
}

// AnswerTranslation holds the localized title for one answer translation.
type AnswerTranslation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// AnswerContent holds the HTML body for one answer translation. It is only
// populated by the step-2 ?include_contents fetch.
type AnswerContent struct {
	ID   int    `json:"id"`
	Body string `json:"body"`
}

// CategoryTranslation holds the localized title for one category.
type CategoryTranslation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Answer returns the answer metadata side-loaded for id.
func (a Assets) Answer(id int) (AnswerMeta, bool) {
	meta, ok := a.Answers[strconv.Itoa(id)]
	return meta, ok
}

// AnswerTranslation returns the side-loaded translation for translationID.
func (a Assets) AnswerTranslation(translationID int) (AnswerTranslation, bool) {
	tr, ok := a.AnswerTranslations[strconv.Itoa(translationID)]
	return tr, ok
}

// Content returns the side-loaded body content for translationID.
func (a Assets) Content(translationID int) (AnswerContent, bool) {
	content, ok := a.Contents[strconv.Itoa(translationID)]
	return content, ok
}
