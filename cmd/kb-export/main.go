// Command kb-export exports a Zammad knowledge base to a Markdown file
// tree. Configuration comes from environment variables (with .env support)
// and may be overridden per invocation with flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	kbexport "github.com/goliatone/go-kb-export"
)

type exportModule interface {
	Export(ctx context.Context) (*kbexport.Report, error)
	ExportOrgData(ctx context.Context) error
}

var moduleBuilder = func(cfg kbexport.Config) (exportModule, error) {
	return kbexport.New(cfg)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("kb-export: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := configFromEnv()

	fs := flag.NewFlagSet("kb-export", flag.ExitOnError)
	baseURL := fs.String("url", cfg.BaseURL, "Zammad instance root URL (env ZAMMAD_URL)")
	token := fs.String("token", cfg.Token, "Zammad API token (env ZAMMAD_TOKEN)")
	kbID := fs.Int("kb", cfg.KnowledgeBaseID, "Knowledge base id (env ZAMMAD_KB_ID)")
	delay := fs.Duration("rate-limit", cfg.RequestDelay, "Delay between API requests (env RATE_LIMIT, seconds)")
	outputDir := fs.String("output", cfg.OutputDir, "Output directory (env OUTPUT_DIR)")
	frontmatter := fs.Bool("frontmatter", cfg.Frontmatter, "Write YAML frontmatter blocks (env FRONTMATTER)")
	headingStyle := fs.String("heading-style", cfg.HeadingStyle, "Markdown heading style, atx or setext (env MD_HEADING_STYLE)")
	orgData := fs.Bool("org-data", cfg.ExportOrgData, "Also export users/organizations/roles/groups to _data/ (env EXPORT_ORG_DATA)")
	logLevel := fs.String("log-level", cfg.Logging.Level, "Log level (env LOG_LEVEL)")
	logFormat := fs.String("log-format", cfg.Logging.Format, "Log format, console or json (env LOG_FORMAT)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.BaseURL = *baseURL
	cfg.Token = *token
	cfg.KnowledgeBaseID = *kbID
	cfg.RequestDelay = *delay
	cfg.OutputDir = *outputDir
	cfg.Frontmatter = *frontmatter
	cfg.HeadingStyle = *headingStyle
	cfg.ExportOrgData = *orgData
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat

	module, err := moduleBuilder(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Organisational data first: it is independent of the knowledge base,
	// so a bad knowledge-base id cannot take it down.
	if cfg.ExportOrgData {
		if err := module.ExportOrgData(ctx); err != nil {
			return err
		}
	}

	report, err := module.Export(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, report.Summary())
	for _, warning := range report.Warnings {
		fmt.Fprintln(stdout, "warning:", warning)
	}
	return nil
}

// configFromEnv builds the baseline configuration from the environment.
// RATE_LIMIT keeps its historical unit: a float number of seconds.
func configFromEnv() kbexport.Config {
	cfg := kbexport.DefaultConfig()

	if v := os.Getenv("ZAMMAD_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ZAMMAD_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("ZAMMAD_KB_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.KnowledgeBaseID = id
		}
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil && seconds >= 0 {
			cfg.RequestDelay = time.Duration(seconds * float64(time.Second))
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("FRONTMATTER"); v != "" {
		cfg.Frontmatter = parseBool(v, cfg.Frontmatter)
	}
	if v := os.Getenv("MD_HEADING_STYLE"); v != "" {
		cfg.HeadingStyle = v
	}
	if v := os.Getenv("EXPORT_ORG_DATA"); v != "" {
		cfg.ExportOrgData = parseBool(v, cfg.ExportOrgData)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	return cfg
}

func parseBool(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
