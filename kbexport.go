// Package kbexport exports a Zammad knowledge base to a deterministic tree
// of Markdown files with YAML frontmatter, plus optional organisational
// data exports, for consumption by static-site generators.
package kbexport

import (
	"context"
	"net/http"

	"github.com/goliatone/go-kb-export/exporter"
	"github.com/goliatone/go-kb-export/internal/logging"
	"github.com/goliatone/go-kb-export/internal/logging/gologger"
	"github.com/goliatone/go-kb-export/markdown"
	"github.com/goliatone/go-kb-export/orgdata"
	"github.com/goliatone/go-kb-export/zammad"
)

// Report re-exports the run report for consumers of the kbexport package.
type Report = exporter.Report

// Option overrides a wiring default.
type Option func(*options)

type options struct {
	logProvider logging.Provider
	httpClient  *http.Client
}

// WithLoggerProvider overrides the logger provider built from
// Config.Logging. Useful for tests and embedding.
func WithLoggerProvider(provider logging.Provider) Option {
	return func(o *options) {
		if provider != nil {
			o.logProvider = provider
		}
	}
}

// WithHTTPClient overrides the HTTP transport used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// Module is the top level export runtime facade.
type Module struct {
	cfg       Config
	provider  logging.Provider
	client    *zammad.Client
	converter *markdown.Converter
	writer    *exporter.Writer
}

// New validates cfg and wires the client, converter, and writer. Nothing
// touches the network or the filesystem until Export runs.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	provider := o.logProvider
	if provider == nil {
		built, err := gologger.NewProvider(gologger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			return nil, err
		}
		provider = built
	}

	client, err := zammad.NewClient(zammad.Config{
		BaseURL:      cfg.BaseURL,
		Token:        cfg.Token,
		RequestDelay: cfg.RequestDelay,
		HTTPClient:   o.httpClient,
		Logger:       provider.GetLogger("zammad"),
	})
	if err != nil {
		return nil, err
	}

	converter, err := markdown.NewConverter(markdown.ConverterConfig{
		HeadingStyle: cfg.HeadingStyle,
	})
	if err != nil {
		return nil, err
	}

	return &Module{
		cfg:       cfg,
		provider:  provider,
		client:    client,
		converter: converter,
		writer:    exporter.NewWriter(cfg.OutputDir, provider.GetLogger("writer")),
	}, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Export runs the knowledge-base pipeline and returns its report. Each
// call builds a fresh pipeline so prefetch caches never leak across runs.
func (m *Module) Export(ctx context.Context) (*Report, error) {
	logger := m.provider.GetLogger("exporter")
	pipeline, err := exporter.New(exporter.Config{
		KnowledgeBaseID: m.cfg.KnowledgeBaseID,
		Frontmatter:     m.cfg.Frontmatter,
	}, exporter.Dependencies{
		Client:      m.client,
		Attachments: m.client,
		Tags:        zammad.NewTagResolver(m.client, m.provider.GetLogger("tags")),
		Converter:   m.converter,
		Writer:      m.writer,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx)
}

// ExportOrgData exports users, organizations, roles, and groups to
// _data/ YAML files under the output directory.
func (m *Module) ExportOrgData(ctx context.Context) error {
	return orgdata.New(m.client, m.writer, m.provider.GetLogger("orgdata")).Run(ctx)
}
