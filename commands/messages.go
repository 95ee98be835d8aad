// Package commands exposes the module's operations as go-command messages
// so hosts can dispatch them from CLIs, cron schedulers, or job queues.
package commands

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	exportMessageType  = "kbexport.export"
	orgDataMessageType = "kbexport.export_org_data"
)

// ExportCommand triggers a full knowledge-base export run.
type ExportCommand struct {
	// BaseURL is the Zammad instance root.
	BaseURL string `json:"base_url"`
	// Token is the API access token used for every request.
	Token string `json:"token"`
	// KnowledgeBaseID selects the knowledge base (defaults to 1 when zero).
	KnowledgeBaseID int `json:"knowledge_base_id,omitempty"`
	// OutputDir overrides the output root (defaults to kb_export).
	OutputDir string `json:"output_dir,omitempty"`
	// Frontmatter toggles YAML frontmatter blocks on output files.
	Frontmatter *bool `json:"frontmatter,omitempty"`
	// HeadingStyle is "atx" or "setext".
	HeadingStyle string `json:"heading_style,omitempty"`
	// ExportOrgData additionally exports the organisational collections.
	ExportOrgData bool `json:"export_org_data,omitempty"`
}

// Type implements command.Message.
func (ExportCommand) Type() string { return exportMessageType }

// Validate ensures connection inputs are present before handlers execute.
func (cmd ExportCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.BaseURL, validation.Required, validation.By(nonBlank("kbexport.export.base_url_required", "base_url is required"))),
		validation.Field(&cmd.Token, validation.Required, validation.By(nonBlank("kbexport.export.token_required", "token is required"))),
		validation.Field(&cmd.KnowledgeBaseID, validation.Min(0)),
	)
}

// ExportOrgDataCommand triggers the organisational-data export alone.
type ExportOrgDataCommand struct {
	BaseURL   string `json:"base_url"`
	Token     string `json:"token"`
	OutputDir string `json:"output_dir,omitempty"`
}

// Type implements command.Message.
func (ExportOrgDataCommand) Type() string { return orgDataMessageType }

// Validate ensures connection inputs are present before handlers execute.
func (cmd ExportOrgDataCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.BaseURL, validation.Required, validation.By(nonBlank("kbexport.export_org_data.base_url_required", "base_url is required"))),
		validation.Field(&cmd.Token, validation.Required, validation.By(nonBlank("kbexport.export_org_data.token_required", "token is required"))),
	)
}

func nonBlank(code, message string) func(value any) error {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
