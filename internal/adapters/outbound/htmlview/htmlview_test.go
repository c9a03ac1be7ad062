package htmlview_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/medqc/stacaudit/internal/adapters/outbound/htmlview"
	"github.com/medqc/stacaudit/internal/application"
	"github.com/medqc/stacaudit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a & b`, `a &amp; b`},
		{`<script>`, `&lt;script&gt;`},
		{`"quoted"`, `&quot;quoted&quot;`},
		{`it's`, `it&#39;s`},
		{`&lt;`, `&amp;lt;`},
		{`plain text — ok`, `plain text — ok`},
		{``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlview.EscapeHTML(tt.in))
		})
	}
}

func TestEscapeHTML_NoRawSpecialCharactersRemain(t *testing.T) {
	out := htmlview.EscapeHTML(`<a href="x">'&'</a>`)
	// Strip the entities we produce; nothing markup-significant may remain.
	for _, ent := range []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#39;"} {
		out = strings.ReplaceAll(out, ent, "")
	}
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
	assert.NotContains(t, out, `"`)
	assert.NotContains(t, out, "'")
	assert.NotContains(t, out, "&")
}

func screenFor(t *testing.T, body string) application.Screen {
	t.Helper()
	w := application.NewWorkflow(staticClient(body))
	w.RunAudit(t.Context(), domain.AuditRequest{File: &domain.Document{Name: "a.pdf", Data: []byte("%PDF")}})
	return w.Screen()
}

type staticClient string

func (s staticClient) Submit(_ context.Context, _ domain.AuditRequest) (*domain.AuditResponse, error) {
	return &domain.AuditResponse{StatusCode: 200, ContentType: "application/json", Body: string(s)}, nil
}

func TestViolationsHTML(t *testing.T) {
	s := screenFor(t, `{"violations":[{"rule_id":"R1","title":"Missing CRS","severity":"HIGH","evidence":"<bbox> & \"crs\""},{"rule_id":"R2","title":"t"}]}`)

	html := htmlview.ViolationsHTML(s.Violations)

	assert.Contains(t, html, `<li class="high"><div class="rid">R1 — Missing CRS</div><div class="sev">high</div><div class="ev">&lt;bbox&gt; &amp; &quot;crs&quot;</div></li>`)
	assert.Contains(t, html, `<li class=""><div class="rid">R2 — t</div><div class="sev"></div></li>`)
	assert.NotContains(t, html, "undefined")
	assert.Less(t, strings.Index(html, "R1"), strings.Index(html, "R2"))
}

func TestViolationsHTML_HiddenPanel(t *testing.T) {
	assert.Empty(t, htmlview.ViolationsHTML(application.ViolationsPanel{Hidden: true}))
}

func TestDiagnosticsHTML(t *testing.T) {
	s := screenFor(t, `{"meta":{"llm":{"mode":"sharded","duration_ms":12.5,"hint":"<retry>"}},"assessed_rule_ids":["R1","R'2"]}`)

	html := htmlview.DiagnosticsHTML(s.Diagnostics)

	assert.Contains(t, html, "<div><b>mode</b>: sharded</div>")
	assert.Contains(t, html, "<div><b>duration</b>: 12.5 ms</div>")
	assert.Contains(t, html, "<div><b>hint</b>: &lt;retry&gt;</div>")
	assert.NotContains(t, html, "<b>model</b>", "absent fields are omitted")
	assert.Contains(t, html, "(2):")
	assert.Contains(t, html, "R1\nR&#39;2")
}

func TestRenderPage_IdleScreen(t *testing.T) {
	w := application.NewWorkflow(nil, application.WithAPIBase("http://localhost:8000"))
	var buf bytes.Buffer

	require.NoError(t, htmlview.RenderPage(&buf, w.Screen(), htmlview.PageOptions{Format: "md"}))
	page := buf.String()

	assert.Contains(t, page, "http://localhost:8000")
	assert.Contains(t, page, `<section id="violBox" hidden>`)
	assert.Contains(t, page, `<section id="diagBox" hidden>`)
	assert.Contains(t, page, `id="dlJson" type="button" disabled`)
	assert.Contains(t, page, `id="dlMd" type="button" disabled`)
	assert.Contains(t, page, `<option value="md" selected>`)
	assert.NotContains(t, page, `id="run" type="submit" disabled`)
}

func TestRenderPage_AfterStructuredRun(t *testing.T) {
	s := screenFor(t, `{"violations":[{"rule_id":"R1","title":"<b>x</b>"}],"pretty_text":"# R"}`)
	var buf bytes.Buffer

	require.NoError(t, htmlview.RenderPage(&buf, s, htmlview.PageOptions{}))
	page := buf.String()

	assert.Contains(t, page, `<section id="violBox">`)
	assert.Contains(t, page, "R1 — &lt;b&gt;x&lt;/b&gt;")
	assert.NotContains(t, page, `id="dlJson" type="button" disabled`)
	assert.NotContains(t, page, `id="dlMd" type="button" disabled`)
}
