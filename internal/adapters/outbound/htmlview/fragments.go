package htmlview

import (
	"strconv"
	"strings"

	"github.com/medqc/stacaudit/internal/application"
)

// ViolationsHTML renders the list items of the violations panel. Every value
// comes from the service and is escaped.
func ViolationsHTML(panel application.ViolationsPanel) string {
	if panel.Hidden {
		return ""
	}
	var b strings.Builder
	for _, v := range panel.Items {
		b.WriteString(`<li class="`)
		b.WriteString(EscapeHTML(v.Severity))
		b.WriteString(`"><div class="rid">`)
		b.WriteString(EscapeHTML(v.Heading()))
		b.WriteString(`</div><div class="sev">`)
		b.WriteString(EscapeHTML(v.Severity))
		b.WriteString(`</div>`)
		if v.Evidence != nil {
			b.WriteString(`<div class="ev">`)
			b.WriteString(EscapeHTML(*v.Evidence))
			b.WriteString(`</div>`)
		}
		b.WriteString("</li>\n")
	}
	return b.String()
}

// DiagnosticsHTML renders the diagnostics fields followed by the assessed rules.
func DiagnosticsHTML(panel application.DiagnosticsPanel) string {
	if panel.Hidden {
		return ""
	}
	var b strings.Builder
	for _, f := range panel.Fields {
		b.WriteString("<div><b>")
		b.WriteString(EscapeHTML(f.Label))
		b.WriteString("</b>: ")
		b.WriteString(EscapeHTML(f.Text()))
		b.WriteString("</div>\n")
	}
	if n := len(panel.AssessedRuleIDs); n > 0 {
		b.WriteString(`<div class="assessed"><div><b>assessed rules</b> (`)
		b.WriteString(strconv.Itoa(n))
		b.WriteString(`):</div><pre class="code">`)
		b.WriteString(EscapeHTML(strings.Join(panel.AssessedRuleIDs, "\n")))
		b.WriteString("</pre></div>\n")
	}
	return b.String()
}
