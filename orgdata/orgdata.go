// Package orgdata exports Zammad's organisational records (users,
// organizations, roles, groups) to _data/*.yml documents. Static-site
// generators read these natively: Jekyll via _data/, Hugo via data/,
// Astro via content collections.
//
// The export is independent of the knowledge-base pipeline. Each
// collection failure is logged and the remaining collections still run.
package orgdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/goliatone/go-kb-export/internal/logging"
)

// PageFetcher pages through a collection endpoint with ?expand=true so
// integer id references arrive with their names resolved inline.
type PageFetcher interface {
	FetchAllPages(ctx context.Context, path string) ([]json.RawMessage, error)
}

// DataWriter persists one collection as a YAML document.
type DataWriter interface {
	WriteDataFile(name string, v any) error
}

// GroupAccess is one normalised group membership entry. Zammad returns
// membership as {"group name": "access level"}; a list of explicit pairs
// reads better in templates and survives marshalling deterministically.
type GroupAccess struct {
	Group  string `yaml:"group"`
	Access string `yaml:"access"`
}

// User is one exported user record. Nullable upstream fields stay
// pointers so YAML shows null instead of a fabricated zero value.
type User struct {
	ID             int           `yaml:"id"`
	Login          string        `yaml:"login"`
	Email          string        `yaml:"email"`
	Firstname      string        `yaml:"firstname"`
	Lastname       string        `yaml:"lastname"`
	Active         bool          `yaml:"active"`
	OrganizationID *int          `yaml:"organization_id"`
	Organization   *string       `yaml:"organization"`
	RoleIDs        []int         `yaml:"role_ids"`
	Roles          []string      `yaml:"roles"`
	GroupAccess    []GroupAccess `yaml:"group_access"`
	LastLogin      *string       `yaml:"last_login"`
	CreatedAt      string        `yaml:"created_at"`
	UpdatedAt      string        `yaml:"updated_at"`
}

// Organization is one exported organization record. Membership is stored
// as a count; the full join lives in users.yml via organization_id.
type Organization struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Note        *string `yaml:"note"`
	Domain      *string `yaml:"domain"`
	Active      bool    `yaml:"active"`
	MemberCount int     `yaml:"member_count"`
	CreatedAt   string  `yaml:"created_at"`
	UpdatedAt   string  `yaml:"updated_at"`
}

// Role is one exported role record.
type Role struct {
	ID              int     `yaml:"id"`
	Name            string  `yaml:"name"`
	Note            *string `yaml:"note"`
	Active          bool    `yaml:"active"`
	DefaultAtSignup bool    `yaml:"default_at_signup"`
	CreatedAt       string  `yaml:"created_at"`
	UpdatedAt       string  `yaml:"updated_at"`
}

// Group is one exported group record.
type Group struct {
	ID                 int     `yaml:"id"`
	Name               string  `yaml:"name"`
	Note               *string `yaml:"note"`
	Active             bool    `yaml:"active"`
	Email              *string `yaml:"email"`
	FollowUpPossible   string  `yaml:"follow_up_possible"`
	FollowUpAssignment bool    `yaml:"follow_up_assignment"`
	SharedDrafts       bool    `yaml:"shared_drafts"`
	CreatedAt          string  `yaml:"created_at"`
	UpdatedAt          string  `yaml:"updated_at"`
}

// Exporter runs the organisational-data export.
type Exporter struct {
	client PageFetcher
	writer DataWriter
	logger logging.Logger
}

// New builds an Exporter. A nil logger falls back to the no-op logger.
func New(client PageFetcher, writer DataWriter, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Exporter{client: client, writer: writer, logger: logger}
}

// Run exports all four collections. A collection that fails to fetch or
// write is logged as a warning and skipped; the remaining collections
// still run. Run only errors when every collection failed, which almost
// always means the token lacks admin scope entirely.
func (e *Exporter) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"users", e.exportUsers},
		{"organizations", e.exportOrganizations},
		{"roles", e.exportRoles},
		{"groups", e.exportGroups},
	}

	var failed int
	for _, step := range steps {
		count, err := step.fn(ctx)
		if err != nil {
			failed++
			e.logger.Warn("organisational collection skipped", "collection", step.name, "error", err)
			continue
		}
		e.logger.Info("exported collection", "collection", step.name, "count", count)
	}

	if failed == len(steps) {
		return fmt.Errorf("orgdata: all %d collections failed, check the token's admin permissions", failed)
	}
	return nil
}

type userRecord struct {
	ID             int               `json:"id"`
	Login          string            `json:"login"`
	Email          string            `json:"email"`
	Firstname      string            `json:"firstname"`
	Lastname       string            `json:"lastname"`
	Active         bool              `json:"active"`
	OrganizationID *int              `json:"organization_id"`
	Organization   *string           `json:"organization"`
	RoleIDs        []int             `json:"role_ids"`
	Roles          []string          `json:"roles"`
	Groups         map[string]string `json:"groups"`
	LastLogin      *string           `json:"last_login"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

func (e *Exporter) exportUsers(ctx context.Context) (int, error) {
	pages, err := e.client.FetchAllPages(ctx, "/users")
	if err != nil {
		return 0, err
	}

	users := make([]User, 0, len(pages))
	for _, raw := range pages {
		var record userRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, fmt.Errorf("orgdata: decode user: %w", err)
		}
		if record.ID == 0 {
			continue
		}
		// Zammad's internal system actor, not a real account.
		if record.Login == "-" {
			continue
		}

		users = append(users, User{
			ID:             record.ID,
			Login:          record.Login,
			Email:          record.Email,
			Firstname:      record.Firstname,
			Lastname:       record.Lastname,
			Active:         record.Active,
			OrganizationID: record.OrganizationID,
			Organization:   record.Organization,
			RoleIDs:        orEmptyInts(record.RoleIDs),
			Roles:          orEmptyStrings(record.Roles),
			GroupAccess:    normalizeGroupAccess(record.Groups),
			LastLogin:      record.LastLogin,
			CreatedAt:      record.CreatedAt,
			UpdatedAt:      record.UpdatedAt,
		})
	}

	if err := e.writer.WriteDataFile("users", users); err != nil {
		return 0, err
	}
	return len(users), nil
}

type organizationRecord struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Note      *string `json:"note"`
	Domain    *string `json:"domain"`
	Active    bool    `json:"active"`
	MemberIDs []int   `json:"member_ids"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func (e *Exporter) exportOrganizations(ctx context.Context) (int, error) {
	pages, err := e.client.FetchAllPages(ctx, "/organizations")
	if err != nil {
		return 0, err
	}

	orgs := make([]Organization, 0, len(pages))
	for _, raw := range pages {
		var record organizationRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, fmt.Errorf("orgdata: decode organization: %w", err)
		}
		if record.ID == 0 {
			continue
		}
		orgs = append(orgs, Organization{
			ID:          record.ID,
			Name:        record.Name,
			Note:        blankToNil(record.Note),
			Domain:      blankToNil(record.Domain),
			Active:      record.Active,
			MemberCount: len(record.MemberIDs),
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		})
	}

	if err := e.writer.WriteDataFile("organizations", orgs); err != nil {
		return 0, err
	}
	return len(orgs), nil
}

type roleRecord struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Note            *string `json:"note"`
	Active          bool    `json:"active"`
	DefaultAtSignup *bool   `json:"default_at_signup"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (e *Exporter) exportRoles(ctx context.Context) (int, error) {
	pages, err := e.client.FetchAllPages(ctx, "/roles")
	if err != nil {
		return 0, err
	}

	roles := make([]Role, 0, len(pages))
	for _, raw := range pages {
		var record roleRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, fmt.Errorf("orgdata: decode role: %w", err)
		}
		if record.ID == 0 {
			continue
		}
		roles = append(roles, Role{
			ID:     record.ID,
			Name:   record.Name,
			Note:   blankToNil(record.Note),
			Active: record.Active,
			// Null in older Zammad versions; treat null as false.
			DefaultAtSignup: record.DefaultAtSignup != nil && *record.DefaultAtSignup,
			CreatedAt:       record.CreatedAt,
			UpdatedAt:       record.UpdatedAt,
		})
	}

	if err := e.writer.WriteDataFile("roles", roles); err != nil {
		return 0, err
	}
	return len(roles), nil
}

type groupRecord struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Note               *string `json:"note"`
	Active             bool    `json:"active"`
	Email              *string `json:"email"`
	FollowUpPossible   string  `json:"follow_up_possible"`
	FollowUpAssignment bool    `json:"follow_up_assignment"`
	SharedDrafts       bool    `json:"shared_drafts"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func (e *Exporter) exportGroups(ctx context.Context) (int, error) {
	pages, err := e.client.FetchAllPages(ctx, "/groups")
	if err != nil {
		return 0, err
	}

	groups := make([]Group, 0, len(pages))
	for _, raw := range pages {
		var record groupRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return 0, fmt.Errorf("orgdata: decode group: %w", err)
		}
		if record.ID == 0 {
			continue
		}
		groups = append(groups, Group{
			ID:                 record.ID,
			Name:               record.Name,
			Note:               blankToNil(record.Note),
			Active:             record.Active,
			Email:              blankToNil(record.Email),
			FollowUpPossible:   record.FollowUpPossible,
			FollowUpAssignment: record.FollowUpAssignment,
			SharedDrafts:       record.SharedDrafts,
			CreatedAt:          record.CreatedAt,
			UpdatedAt:          record.UpdatedAt,
		})
	}

	if err := e.writer.WriteDataFile("groups", groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}

// normalizeGroupAccess flattens the expanded membership map into sorted
// {group, access} pairs so repeated exports are byte-identical.
func normalizeGroupAccess(groups map[string]string) []GroupAccess {
	if len(groups) == 0 {
		return []GroupAccess{}
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	access := make([]GroupAccess, 0, len(names))
	for _, name := range names {
		access = append(access, GroupAccess{Group: name, Access: groups[name]})
	}
	return access
}

func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func orEmptyInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func orEmptyStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
