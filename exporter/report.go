package exporter

import "fmt"

// Report accumulates what a run produced and every non-fatal degradation
// it survived.
type Report struct {
	Categories      int
	Articles        int
	Images          int
	SkippedArticles int
	Warnings        []string
}

// Degraded reports whether the run completed with warnings or skips.
func (r *Report) Degraded() bool {
	return r.SkippedArticles > 0 || len(r.Warnings) > 0
}

// Summary renders a one-line human-readable digest of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("exported %d categories, %d articles, %d images (%d skipped, %d warnings)",
		r.Categories, r.Articles, r.Images, r.SkippedArticles, len(r.Warnings))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) skipf(format string, args ...any) {
	r.SkippedArticles++
	r.warnf(format, args...)
}
