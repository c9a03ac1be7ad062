package application

import (
	"errors"
	"fmt"

	"github.com/medqc/stacaudit/internal/domain"
)

// ErrDownloadDisabled is returned when an artifact is requested from a
// control that the current run did not enable.
var ErrDownloadDisabled = errors.New("download is not available for this run")

// Screen is the display state owned by a Workflow. Every surface renders it.
type Screen struct {
	APIBase          string             `json:"api_base"`
	RunID            string             `json:"run_id,omitempty"`
	State            domain.RunState    `json:"state"`
	Notice           string             `json:"notice,omitempty"`
	Output           string             `json:"output"`
	Kind             domain.ContentKind `json:"content_kind,omitempty"`
	ServerElapsed    string             `json:"server_elapsed,omitempty"`
	Summary          *domain.Summary    `json:"summary,omitempty"`
	Violations       ViolationsPanel    `json:"violations"`
	Diagnostics      DiagnosticsPanel   `json:"diagnostics"`
	JSONDownload     DownloadControl    `json:"json_download"`
	MarkdownDownload DownloadControl    `json:"markdown_download"`
	SheetDownload    DownloadControl    `json:"sheet_download"`
	TriggerEnabled   bool               `json:"trigger_enabled"`
}

// ViolationsPanel lists the violations of the current run in received order.
type ViolationsPanel struct {
	Hidden bool               `json:"hidden"`
	Items  []domain.Violation `json:"items,omitempty"`
}

// DiagnosticsPanel shows analysis metadata and the assessed rule identifiers.
type DiagnosticsPanel struct {
	Hidden          bool               `json:"hidden"`
	Fields          []DiagnosticsField `json:"fields,omitempty"`
	AssessedRuleIDs []string           `json:"assessed_rule_ids,omitempty"`
}

// DiagnosticsField is one labelled value of the diagnostics panel.
type DiagnosticsField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Text renders the value with its unit.
func (f DiagnosticsField) Text() string {
	if f.Unit == "" {
		return f.Value
	}
	return f.Value + " " + f.Unit
}

// DownloadControl is an artifact trigger. Content is produced only when the
// control is activated.
type DownloadControl struct {
	Kind     domain.ArtifactKind `json:"kind"`
	Enabled  bool                `json:"enabled"`
	generate func() (domain.Artifact, error)
}

// Activate generates the control's artifact.
func (c DownloadControl) Activate() (domain.Artifact, error) {
	if !c.Enabled || c.generate == nil {
		return domain.Artifact{}, fmt.Errorf("%s: %w", c.Kind, ErrDownloadDisabled)
	}
	return c.generate()
}

func (c *DownloadControl) enable(generate func() (domain.Artifact, error)) {
	c.Enabled = true
	c.generate = generate
}

func (c *DownloadControl) disable() {
	c.Enabled = false
	c.generate = nil
}

// newScreen returns the idle screen shown before the first run.
func newScreen(apiBase string) Screen {
	return Screen{
		APIBase:          apiBase,
		State:            domain.StateIdle,
		Violations:       ViolationsPanel{Hidden: true},
		Diagnostics:      DiagnosticsPanel{Hidden: true},
		JSONDownload:     DownloadControl{Kind: domain.ArtifactJSON},
		MarkdownDownload: DownloadControl{Kind: domain.ArtifactMarkdown},
		SheetDownload:    DownloadControl{Kind: domain.ArtifactSpreadsheet},
		TriggerEnabled:   true,
	}
}

// clone copies the screen so callers can read it without holding the lock.
func (s Screen) clone() Screen {
	out := s
	out.Violations.Items = append([]domain.Violation(nil), s.Violations.Items...)
	out.Diagnostics.Fields = append([]DiagnosticsField(nil), s.Diagnostics.Fields...)
	out.Diagnostics.AssessedRuleIDs = append([]string(nil), s.Diagnostics.AssessedRuleIDs...)
	return out
}

// control returns the download control for kind.
func (s *Screen) control(kind domain.ArtifactKind) (*DownloadControl, bool) {
	switch kind {
	case domain.ArtifactJSON:
		return &s.JSONDownload, true
	case domain.ArtifactMarkdown:
		return &s.MarkdownDownload, true
	case domain.ArtifactSpreadsheet:
		return &s.SheetDownload, true
	default:
		return nil, false
	}
}
