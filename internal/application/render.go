package application

import (
	"github.com/medqc/stacaudit/internal/domain"
)

// RenderViolations fills the violations panel from the canonical violation
// sequence. An absent or empty sequence leaves the panel untouched.
func RenderViolations(panel *ViolationsPanel, result *domain.StructuredResult) {
	if result == nil || len(result.Violations) == 0 {
		return
	}
	panel.Hidden = false
	panel.Items = append([]domain.Violation(nil), result.Violations...)
}

// RenderDiagnostics fills the diagnostics panel. Each metadata field is shown
// only when present; the panel stays untouched when there is neither metadata
// nor an assessed rule list.
func RenderDiagnostics(panel *DiagnosticsPanel, result *domain.StructuredResult) {
	if result == nil {
		return
	}
	meta := result.LLM
	if meta == nil && len(result.AssessedRuleIDs) == 0 {
		return
	}

	panel.Hidden = false
	panel.Fields = nil
	if meta != nil {
		addString(panel, "mode", meta.Mode)
		addString(panel, "model", meta.Model)
		if len(meta.Supports) > 0 {
			panel.Fields = append(panel.Fields, DiagnosticsField{Label: "supports", Value: string(meta.Supports)})
		}
		addNumber(panel, "duration", meta.DurationMS, "ms")
		addNumber(panel, "chunks", meta.Chunks, "")
		addNumber(panel, "parse_errors", meta.ParseErrors, "")
		addNumber(panel, "assessed_empty_chunks", meta.AssessedEmptyChunks, "")
		addNumber(panel, "assessed_weak_chunks", meta.AssessedWeakChunks, "")
		addString(panel, "error", meta.Error)
		addString(panel, "hint", meta.Hint)
	}

	panel.AssessedRuleIDs = nil
	if len(result.AssessedRuleIDs) > 0 {
		panel.AssessedRuleIDs = append([]string(nil), result.AssessedRuleIDs...)
	}
}

func addString(panel *DiagnosticsPanel, label string, v *string) {
	if v == nil {
		return
	}
	panel.Fields = append(panel.Fields, DiagnosticsField{Label: label, Value: *v})
}

func addNumber(panel *DiagnosticsPanel, label string, v *float64, unit string) {
	if v == nil {
		return
	}
	panel.Fields = append(panel.Fields, DiagnosticsField{Label: label, Value: domain.FormatNumber(*v), Unit: unit})
}

// EnableDownloads wires the download controls to the run's result. All
// controls are disabled first; nothing is generated until a control is
// activated.
func EnableDownloads(screen *Screen, result *domain.StructuredResult, text *string) {
	screen.JSONDownload.disable()
	screen.MarkdownDownload.disable()
	screen.SheetDownload.disable()

	switch {
	case result != nil:
		screen.JSONDownload.enable(func() (domain.Artifact, error) {
			content, err := result.Indented()
			if err != nil {
				return domain.Artifact{}, err
			}
			return domain.NewJSONArtifact(content), nil
		})
		if result.PrettyText != "" {
			md := result.PrettyText
			screen.MarkdownDownload.enable(func() (domain.Artifact, error) {
				return domain.NewMarkdownArtifact(md), nil
			})
		}
	case text != nil && *text != "":
		md := *text
		screen.MarkdownDownload.enable(func() (domain.Artifact, error) {
			return domain.NewMarkdownArtifact(md), nil
		})
	}
}

// EnableSpreadsheet enables the spreadsheet control when the result carries
// violations.
func EnableSpreadsheet(screen *Screen, result *domain.StructuredResult, builder domain.SpreadsheetBuilder) {
	screen.SheetDownload.disable()
	if builder == nil || result == nil || len(result.Violations) == 0 {
		return
	}
	violations := append([]domain.Violation(nil), result.Violations...)
	screen.SheetDownload.enable(func() (domain.Artifact, error) {
		return builder.Build(violations)
	})
}
