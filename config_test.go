package kbexport

import (
	"errors"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://support.example.com"
	cfg.Token = "secret"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfigValidate_RequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing base URL", func(c *Config) { c.BaseURL = "" }, ErrBaseURLRequired},
		{"blank base URL", func(c *Config) { c.BaseURL = "   " }, ErrBaseURLRequired},
		{"missing token", func(c *Config) { c.Token = "" }, ErrTokenRequired},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, ErrOutputDirRequired},
		{"zero kb id", func(c *Config) { c.KnowledgeBaseID = 0 }, ErrKnowledgeBaseIDInvalid},
		{"negative kb id", func(c *Config) { c.KnowledgeBaseID = -3 }, ErrKnowledgeBaseIDInvalid},
		{"negative delay", func(c *Config) { c.RequestDelay = -1 }, ErrRequestDelayInvalid},
		{"bad heading style", func(c *Config) { c.HeadingStyle = "wiki" }, ErrHeadingStyleUnsupported},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrLoggingLevelInvalid},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrLoggingFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigValidate_HeadingStyleAliases(t *testing.T) {
	for _, style := range []string{"", "atx", "ATX", "setext", "underline"} {
		cfg := validConfig()
		cfg.HeadingStyle = style
		if err := cfg.Validate(); err != nil {
			t.Fatalf("heading style %q rejected: %v", style, err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.KnowledgeBaseID != 1 {
		t.Fatalf("KnowledgeBaseID = %d, want 1", cfg.KnowledgeBaseID)
	}
	if !cfg.Frontmatter {
		t.Fatal("Frontmatter should default on")
	}
	if cfg.OutputDir != "kb_export" {
		t.Fatalf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.RequestDelay <= 0 {
		t.Fatalf("RequestDelay = %v, want positive", cfg.RequestDelay)
	}
}
