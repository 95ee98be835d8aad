package commands

import (
	"context"

	command "github.com/goliatone/go-command"

	kbexport "github.com/goliatone/go-kb-export"
	"github.com/goliatone/go-kb-export/internal/logging"
)

const (
	exportOperation  = "kbexport.export"
	orgDataOperation = "kbexport.export_org_data"
)

var (
	_ command.Commander[ExportCommand]        = (*ExportHandler)(nil)
	_ command.Commander[ExportOrgDataCommand] = (*ExportOrgDataHandler)(nil)
)

// ExportModule is the slice of the kbexport facade the handlers drive.
type ExportModule interface {
	Export(ctx context.Context) (*kbexport.Report, error)
	ExportOrgData(ctx context.Context) error
}

// ModuleBuilder constructs the module for one command execution. Tests
// swap it to avoid touching the network.
type ModuleBuilder func(cfg kbexport.Config) (ExportModule, error)

func defaultBuilder(cfg kbexport.Config) (ExportModule, error) {
	return kbexport.New(cfg)
}

// HandlerOption configures a handler instance.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	build  ModuleBuilder
	logger logging.Logger
}

// WithModuleBuilder overrides how the module is constructed per execution.
func WithModuleBuilder(build ModuleBuilder) HandlerOption {
	return func(h *handlerConfig) {
		if build != nil {
			h.build = build
		}
	}
}

// WithLogger injects the logger used during execution.
func WithLogger(logger logging.Logger) HandlerOption {
	return func(h *handlerConfig) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func newHandlerConfig(opts []HandlerOption) handlerConfig {
	h := handlerConfig{build: defaultBuilder, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// configFromCommand maps command fields onto the module configuration,
// leaving defaults in place for anything the message omits.
func configFromCommand(cmd ExportCommand) kbexport.Config {
	cfg := kbexport.DefaultConfig()
	cfg.BaseURL = cmd.BaseURL
	cfg.Token = cmd.Token
	if cmd.KnowledgeBaseID > 0 {
		cfg.KnowledgeBaseID = cmd.KnowledgeBaseID
	}
	if cmd.OutputDir != "" {
		cfg.OutputDir = cmd.OutputDir
	}
	if cmd.Frontmatter != nil {
		cfg.Frontmatter = *cmd.Frontmatter
	}
	if cmd.HeadingStyle != "" {
		cfg.HeadingStyle = cmd.HeadingStyle
	}
	cfg.ExportOrgData = cmd.ExportOrgData
	return cfg
}

// ExportHandler runs the knowledge-base export pipeline for dispatched
// ExportCommand messages.
type ExportHandler struct {
	handlerConfig
}

// NewExportHandler creates the export command handler.
func NewExportHandler(opts ...HandlerOption) *ExportHandler {
	return &ExportHandler{handlerConfig: newHandlerConfig(opts)}
}

// Execute conforms to command.Commander[ExportCommand].
func (h *ExportHandler) Execute(ctx context.Context, msg ExportCommand) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}

	module, err := h.build(configFromCommand(msg))
	if err != nil {
		return err
	}

	if msg.ExportOrgData {
		if err := module.ExportOrgData(ctx); err != nil {
			return err
		}
	}

	report, err := module.Export(ctx)
	if err != nil {
		h.logger.Error("command failed", "operation", exportOperation, "error", err)
		return err
	}

	h.logger.Info("command completed", "operation", exportOperation, "summary", report.Summary())
	return nil
}

// ExportOrgDataHandler runs the organisational-data export alone.
type ExportOrgDataHandler struct {
	handlerConfig
}

// NewExportOrgDataHandler creates the organisational-data command handler.
func NewExportOrgDataHandler(opts ...HandlerOption) *ExportOrgDataHandler {
	return &ExportOrgDataHandler{handlerConfig: newHandlerConfig(opts)}
}

// Execute conforms to command.Commander[ExportOrgDataCommand].
func (h *ExportOrgDataHandler) Execute(ctx context.Context, msg ExportOrgDataCommand) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}

	cfg := kbexport.DefaultConfig()
	cfg.BaseURL = msg.BaseURL
	cfg.Token = msg.Token
	if msg.OutputDir != "" {
		cfg.OutputDir = msg.OutputDir
	}

	module, err := h.build(cfg)
	if err != nil {
		return err
	}

	if err := module.ExportOrgData(ctx); err != nil {
		h.logger.Error("command failed", "operation", orgDataOperation, "error", err)
		return err
	}

	h.logger.Info("command completed", "operation", orgDataOperation)
	return nil
}
