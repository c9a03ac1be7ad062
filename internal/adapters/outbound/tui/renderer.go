package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	severityColors = map[string]lipgloss.Color{
		"critical": danger,
		"high":     danger,
		"medium":   warning,
		"low":      info,
		"info":     info,
	}

	stateColors = map[domain.RunState]lipgloss.Color{
		domain.StateIdle:      dim,
		domain.StateRunning:   accent,
		domain.StateSucceeded: success,
		domain.StateFailed:    danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	labelStyle    = lipgloss.NewStyle().Foreground(dim)
	evidenceStyle = lipgloss.NewStyle().Foreground(info).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderScreen formats the workflow screen for terminal output.
func RenderScreen(s application.Screen) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("stacaudit")
	subtitle := dimStyle.Render(s.APIBase)
	stateLine := lipgloss.NewStyle().Bold(true).Foreground(stateColor(s.State)).Render(string(s.State))
	if s.ServerElapsed != "" {
		stateLine += "  " + dimStyle.Render("server "+s.ServerElapsed)
	}
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + stateLine))
	b.WriteString("\n\n")

	if s.Notice != "" {
		b.WriteString("  " + failStyle.Render(s.Notice) + "\n\n")
	}

	if s.Summary != nil {
		fmt.Fprintf(&b, "  %s  %s  %s\n\n",
			titleStyle.Render("Summary"),
			passStyle.Render(fmt.Sprintf("%d passes", s.Summary.Passes)),
			failStyle.Render(fmt.Sprintf("%d violations", s.Summary.Violations)),
		)
	}

	// ── Violations ──
	if !s.Violations.Hidden {
		b.WriteString("  " + titleStyle.Render("Violations") + "  " + dimStyle.Render(fmt.Sprintf("%d", len(s.Violations.Items))) + "\n\n")
		for _, v := range s.Violations.Items {
			renderViolation(&b, v)
		}
		b.WriteString("\n")
	}

	// ── Diagnostics ──
	if !s.Diagnostics.Hidden {
		b.WriteString("  " + titleStyle.Render("Diagnostics") + "\n\n")
		for _, f := range s.Diagnostics.Fields {
			fmt.Fprintf(&b, "    %s %s\n", labelStyle.Render(padRight(f.Label, 22)), f.Text())
		}
		if n := len(s.Diagnostics.AssessedRuleIDs); n > 0 {
			fmt.Fprintf(&b, "    %s %d\n", labelStyle.Render(padRight("assessed rules", 22)), n)
			for _, id := range s.Diagnostics.AssessedRuleIDs {
				b.WriteString("      " + faintStyle.Render(id) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n")
	b.WriteString("  " + downloadTag(s.JSONDownload, domain.JSONFilename) + "  " + downloadTag(s.MarkdownDownload, domain.MarkdownFilename))
	if s.SheetDownload.Enabled {
		b.WriteString("  " + downloadTag(s.SheetDownload, domain.SpreadsheetFilename))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderOutput returns the output area followed by the rendered screen.
func RenderOutput(s application.Screen) string {
	if s.Output == "" {
		return RenderScreen(s)
	}
	return s.Output + "\n\n" + RenderScreen(s)
}

func renderViolation(b *strings.Builder, v domain.Violation) {
	tag := severityTag(v.Severity)
	fmt.Fprintf(b, "    %s %s\n", tag, titleStyle.Render(v.Heading()))
	if v.Evidence != nil {
		fmt.Fprintf(b, "          %s\n", evidenceStyle.Render(*v.Evidence))
	}
}

func severityTag(severity string) string {
	label := severity
	if label == "" {
		label = "-"
	}
	color, ok := severityColors[severity]
	if !ok {
		color = dim
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(padRight(label, 8))
}

func downloadTag(c application.DownloadControl, filename string) string {
	if c.Enabled {
		return passStyle.Render("● " + filename)
	}
	return faintStyle.Render("○ " + filename)
}

func stateColor(s domain.RunState) lipgloss.Color {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return fg
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No audit history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Audit History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.DocumentCommit
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 10 {
			ts = ts[:10]
		}

		stateStyled := lipgloss.NewStyle().
			Foreground(stateColor(e.State)).
			Render(padRight(string(e.State), 9))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			stateStyled,
			e.File,
		)
		if e.State == domain.StateSucceeded {
			line += "  " + dimStyle.Render(fmt.Sprintf("%d violations", e.Violations))
		}

		if i > 0 && e.State == domain.StateSucceeded && entries[i-1].State == domain.StateSucceeded {
			diff := e.Violations - entries[i-1].Violations
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
