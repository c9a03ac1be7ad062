// Package termui is the interactive terminal surface of the audit client.
package termui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

// Options configures the terminal UI.
type Options struct {
	Workflow *application.Workflow
	// Sink receives artifacts exported from the UI.
	Sink domain.ArtifactSink
	Path string
	// Candidates are PDFs the user can cycle through with tab.
	Candidates []string
	Human      bool
	Format     string
}

// Run starts the UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run audit tui: %w", err)
	}
	return nil
}
