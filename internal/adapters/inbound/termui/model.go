package termui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medqc/stacaudit/internal/adapters/outbound/docfile"
	"github.com/medqc/stacaudit/internal/adapters/outbound/tui"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

type inputMode string

const (
	modeBrowse inputMode = "browse"
	modePath   inputMode = "path"
)

const refreshInterval = 250 * time.Millisecond

const helpLine = "q quit | enter run | p path | tab next pdf | h human | f format | j/m/x export json/md/xlsx"

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
)

type tickMsg struct{}

// runDoneMsg is delivered when a RunAudit command returns.
type runDoneMsg struct{}

// exportDoneMsg carries the outcome of an export.
type exportDoneMsg struct {
	location string
	err      error
}

type uiModel struct {
	ctx      context.Context
	workflow *application.Workflow
	sink     domain.ArtifactSink

	path       string
	pathBuf    string
	candidates []string
	next       int
	human      bool
	format     string

	mode    inputMode
	running bool
	screen  application.Screen
	message string
	width   int
	height  int
}

func newModel(ctx context.Context, opts Options) uiModel {
	return uiModel{
		ctx:        ctx,
		workflow:   opts.Workflow,
		sink:       opts.Sink,
		path:       opts.Path,
		candidates: opts.Candidates,
		human:      opts.Human,
		format:     opts.Format,
		mode:       modeBrowse,
		screen:     opts.Workflow.Screen(),
		message:    helpLine,
		width:      100,
		height:     36,
	}
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.width = msg.Width
		}
		if msg.Height > 10 {
			m.height = msg.Height
		}
		return m, nil
	case tickMsg:
		if !m.running {
			return m, nil
		}
		m.screen = m.workflow.Screen()
		return m, tick()
	case runDoneMsg:
		m.running = false
		m.screen = m.workflow.Screen()
		m.message = helpLine
		return m, nil
	case exportDoneMsg:
		if msg.err != nil {
			m.message = "export failed: " + msg.err.Error()
		} else {
			m.message = "saved " + msg.location
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode == modePath {
			return m.handlePathMode(msg), nil
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleBrowseMode(msg)
	default:
		return m, nil
	}
}

func (m uiModel) handleBrowseMode(msg tea.KeyMsg) (uiModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "r":
		return m.startRun()
	case "p":
		m.mode = modePath
		m.pathBuf = m.path
		m.message = "path: type the PDF path and press Enter (Esc to cancel)"
	case "tab":
		if len(m.candidates) > 0 {
			m.path = m.candidates[m.next%len(m.candidates)]
			m.next++
		}
	case "h":
		m.human = !m.human
	case "f":
		m.format = nextFormat(m.format)
	case "j":
		return m, m.export(domain.ArtifactJSON)
	case "m":
		return m, m.export(domain.ArtifactMarkdown)
	case "x":
		return m, m.export(domain.ArtifactSpreadsheet)
	}
	return m, nil
}

func (m uiModel) handlePathMode(msg tea.KeyMsg) uiModel {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.path = strings.TrimSpace(m.pathBuf)
		m.message = helpLine
	case "esc":
		m.mode = modeBrowse
		m.pathBuf = m.path
		m.message = helpLine
	case "backspace":
		if len(m.pathBuf) > 0 {
			m.pathBuf = m.pathBuf[:len(m.pathBuf)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.pathBuf += string(msg.Runes)
		}
	}
	return m
}

// startRun begins an audit unless one is already in flight.
func (m uiModel) startRun() (uiModel, tea.Cmd) {
	if m.running || !m.screen.TriggerEnabled {
		return m, nil
	}

	req := domain.AuditRequest{HumanMode: m.human, Format: m.format}
	if m.path != "" {
		doc, err := docfile.Load(m.path)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		req.File = doc
	}

	m.running = true
	m.message = "running…"
	ctx, wf := m.ctx, m.workflow
	return m, tea.Batch(
		func() tea.Msg {
			wf.RunAudit(ctx, req)
			return runDoneMsg{}
		},
		tick(),
	)
}

// tick redraws the screen while a run is in flight.
func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m uiModel) export(kind domain.ArtifactKind) tea.Cmd {
	if m.sink == nil {
		return nil
	}
	ctx, wf, sink := m.ctx, m.workflow, m.sink
	return func() tea.Msg {
		location, err := wf.Export(ctx, kind, sink)
		return exportDoneMsg{location: location, err: err}
	}
}

func (m uiModel) View() string {
	var b strings.Builder
	b.WriteString(tui.RenderScreen(m.screen))
	b.WriteString("\n")

	path := m.path
	if m.mode == modePath {
		path = inputStyle.Render(m.pathBuf + "_")
	}
	if path == "" {
		path = "(none)"
	}
	format := m.format
	if format == "" {
		format = "default"
	}
	b.WriteString(footerStyle.Render("file: ") + path + "\n")
	b.WriteString(footerStyle.Render("human: ") + onOff(m.human) + footerStyle.Render("  format: ") + format + "\n")
	b.WriteString(footerStyle.Render(m.message) + "\n")
	return b.String()
}

// nextFormat cycles through the default format and the known formats.
func nextFormat(current string) string {
	if current == "" {
		return domain.KnownFormats[0]
	}
	for i, f := range domain.KnownFormats {
		if f == current && i+1 < len(domain.KnownFormats) {
			return domain.KnownFormats[i+1]
		}
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
