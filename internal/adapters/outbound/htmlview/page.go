package htmlview

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
)

//go:embed templates/page.html.tmpl
var templates embed.FS

var pageTmpl = template.Must(template.ParseFS(templates, "templates/page.html.tmpl"))

type pageData struct {
	Screen      application.Screen
	Version     string
	Formats     []string
	Human       bool
	Format      string
	Violations  template.HTML
	Diagnostics template.HTML
}

// PageOptions carries the form defaults shown on the page.
type PageOptions struct {
	Version string
	Human   bool
	Format  string
}

// RenderPage writes the full browser page for screen.
func RenderPage(w io.Writer, screen application.Screen, opts PageOptions) error {
	data := pageData{
		Screen:  screen,
		Version: opts.Version,
		Formats: domain.KnownFormats,
		Human:   opts.Human,
		Format:  opts.Format,
		// Fragments escape every service value themselves.
		Violations:  template.HTML(ViolationsHTML(screen.Violations)),
		Diagnostics: template.HTML(DiagnosticsHTML(screen.Diagnostics)),
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
