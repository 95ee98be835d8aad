package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-kb-export/internal/logging"
)

const (
	indexFilename = "_index.md"
	imagesDirname = "images"
	dataDirname   = "_data"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Writer materializes the output tree. Writes are whole-file overwrites
// with no diffing against previous output, so a run is a full re-sync of
// the generated files; files the pipeline did not generate are never
// touched or deleted. Concurrent runs against the same root are
// unsupported.
type Writer struct {
	root   string
	logger logging.Logger
}

// NewWriter builds a writer rooted at the output directory.
func NewWriter(root string, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Writer{root: root, logger: logger}
}

// Root returns the output directory.
func (w *Writer) Root() string {
	return w.root
}

// WriteCategoryIndex writes the landing page for a category directory.
func (w *Writer) WriteCategoryIndex(path []string, content string) error {
	parts := append(append([]string{w.root}, path...), indexFilename)
	return w.write(filepath.Join(parts...), []byte(content))
}

// WriteArticle writes an article file at <category path>/<slug>.md.
func (w *Writer) WriteArticle(path []string, slug, content string) error {
	parts := append(append([]string{w.root}, path...), slug+".md")
	return w.write(filepath.Join(parts...), []byte(content))
}

// WriteImage writes attachment bytes under the shared root-level images/
// directory. Re-runs overwrite the same filenames.
func (w *Writer) WriteImage(filename string, data []byte) error {
	return w.write(filepath.Join(w.root, imagesDirname, filename), data)
}

// WriteDataFile renders v as YAML under _data/<name>.yml.
func (w *Writer) WriteDataFile(name string, v any) error {
	encoded, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("exporter: encode %s: %w", name, err)
	}
	return w.write(filepath.Join(w.root, dataDirname, name+".yml"), encoded)
}

func (w *Writer) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("exporter: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("exporter: write %s: %w", path, err)
	}

	if rel, err := filepath.Rel(w.root, path); err == nil {
		w.logger.Info("wrote file", "path", rel)
	}
	return nil
}
