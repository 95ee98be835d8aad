package kbexport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kb-export/markdown"
)

var (
	ErrBaseURLRequired         = errors.New("kbexport: base URL is required")
	ErrTokenRequired           = errors.New("kbexport: API token is required")
	ErrOutputDirRequired       = errors.New("kbexport: output directory is required")
	ErrKnowledgeBaseIDInvalid  = errors.New("kbexport: knowledge base id must be positive")
	ErrRequestDelayInvalid     = errors.New("kbexport: request delay must not be negative")
	ErrLoggingLevelInvalid     = errors.New("kbexport: invalid logging level")
	ErrLoggingFormatInvalid    = errors.New("kbexport: invalid logging format")
	ErrHeadingStyleUnsupported = errors.New("kbexport: unsupported heading style")
)

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is trace, debug, info, warn, error, or fatal.
	Level string
	// Format is console or json.
	Format string
}

// Config carries every setting of an export run.
type Config struct {
	// BaseURL is the Zammad instance root, e.g. https://support.example.com.
	BaseURL string
	// Token is the Zammad API access token. It needs knowledge-base read
	// permission; tag and admin permissions are optional and degrade.
	Token string
	// KnowledgeBaseID selects the knowledge base to export.
	KnowledgeBaseID int
	// RequestDelay spaces successive API requests.
	RequestDelay time.Duration
	// OutputDir is the root the Markdown tree is written under.
	OutputDir string
	// Frontmatter toggles YAML frontmatter blocks on every output file.
	Frontmatter bool
	// HeadingStyle is "atx" or "setext".
	HeadingStyle string
	// ExportOrgData additionally exports users, organizations, roles, and
	// groups to _data/ YAML files.
	ExportOrgData bool

	Logging LoggingConfig
}

// DefaultConfig returns the baseline configuration. BaseURL and Token have
// no usable defaults and must be supplied.
func DefaultConfig() Config {
	return Config{
		KnowledgeBaseID: 1,
		RequestDelay:    100 * time.Millisecond,
		OutputDir:       "kb_export",
		Frontmatter:     true,
		HeadingStyle:    markdown.HeadingATX,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrBaseURLRequired
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return ErrTokenRequired
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if cfg.KnowledgeBaseID <= 0 {
		return ErrKnowledgeBaseIDInvalid
	}
	if cfg.RequestDelay < 0 {
		return ErrRequestDelayInvalid
	}
	if _, err := markdown.NormalizeHeadingStyle(cfg.HeadingStyle); err != nil {
		return fmt.Errorf("%w: %s", ErrHeadingStyleUnsupported, cfg.HeadingStyle)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case "console", "text", "json":
		return true
	default:
		return false
	}
}
