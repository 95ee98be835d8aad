package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	kbexport "github.com/goliatone/go-kb-export"
)

type stubModule struct {
	report     *kbexport.Report
	exportErr  error
	orgDataErr error

	exportCalls  int
	orgDataCalls int
}

func (m *stubModule) Export(context.Context) (*kbexport.Report, error) {
	m.exportCalls++
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return m.report, nil
}

func (m *stubModule) ExportOrgData(context.Context) error {
	m.orgDataCalls++
	return m.orgDataErr
}

func withStubBuilder(t *testing.T, module *stubModule, captured *kbexport.Config) {
	t.Helper()
	original := moduleBuilder
	moduleBuilder = func(cfg kbexport.Config) (exportModule, error) {
		if captured != nil {
			*captured = cfg
		}
		return module, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
}

func TestRunPrintsSummary(t *testing.T) {
	module := &stubModule{report: &kbexport.Report{Categories: 2, Articles: 5, Images: 1}}
	withStubBuilder(t, module, nil)

	var out strings.Builder
	err := run([]string{
		"-url", "https://support.example.com",
		"-token", "secret",
	}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if module.exportCalls != 1 {
		t.Fatalf("exportCalls = %d, want 1", module.exportCalls)
	}
	if module.orgDataCalls != 0 {
		t.Fatalf("orgDataCalls = %d, want 0", module.orgDataCalls)
	}
	if !strings.Contains(out.String(), "exported 2 categories, 5 articles, 1 images") {
		t.Fatalf("summary missing from output: %q", out.String())
	}
}

func TestRunFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("ZAMMAD_URL", "https://env.example.com")
	t.Setenv("ZAMMAD_TOKEN", "env-token")
	t.Setenv("ZAMMAD_KB_ID", "7")
	t.Setenv("RATE_LIMIT", "0.5")
	t.Setenv("OUTPUT_DIR", "/env/out")
	t.Setenv("FRONTMATTER", "false")

	module := &stubModule{report: &kbexport.Report{}}
	var cfg kbexport.Config
	withStubBuilder(t, module, &cfg)

	var out strings.Builder
	err := run([]string{
		"-url", "https://flag.example.com",
		"-kb", "9",
	}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if cfg.BaseURL != "https://flag.example.com" {
		t.Fatalf("BaseURL = %q, want flag value", cfg.BaseURL)
	}
	if cfg.KnowledgeBaseID != 9 {
		t.Fatalf("KnowledgeBaseID = %d, want flag value 9", cfg.KnowledgeBaseID)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("Token = %q, want env value", cfg.Token)
	}
	if cfg.OutputDir != "/env/out" {
		t.Fatalf("OutputDir = %q, want env value", cfg.OutputDir)
	}
	if cfg.Frontmatter {
		t.Fatal("Frontmatter should be disabled via env")
	}
	if cfg.RequestDelay.Milliseconds() != 500 {
		t.Fatalf("RequestDelay = %v, want 500ms from RATE_LIMIT seconds", cfg.RequestDelay)
	}
}

func TestRunExportsOrgDataWhenEnabled(t *testing.T) {
	module := &stubModule{report: &kbexport.Report{}}
	withStubBuilder(t, module, nil)

	var out strings.Builder
	err := run([]string{
		"-url", "https://support.example.com",
		"-token", "secret",
		"-org-data",
	}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if module.orgDataCalls != 1 {
		t.Fatalf("orgDataCalls = %d, want 1", module.orgDataCalls)
	}
}

func TestRunPropagatesExportError(t *testing.T) {
	wantErr := errors.New("boom")
	module := &stubModule{exportErr: wantErr}
	withStubBuilder(t, module, nil)

	var out strings.Builder
	err := run([]string{"-url", "https://support.example.com", "-token", "secret"}, &out)
	if !errors.Is(err, wantErr) {
		t.Fatalf("run err = %v, want %v", err, wantErr)
	}
}

func TestRunPrintsWarnings(t *testing.T) {
	module := &stubModule{report: &kbexport.Report{
		Warnings: []string{"answer 9: tags unavailable"},
	}}
	withStubBuilder(t, module, nil)

	var out strings.Builder
	if err := run([]string{"-url", "https://support.example.com", "-token", "secret"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "warning: answer 9: tags unavailable") {
		t.Fatalf("warnings missing from output: %q", out.String())
	}
}
