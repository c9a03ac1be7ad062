// Package htmlview renders the audit screen as HTML for the browser UI.
package htmlview

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the five markup-significant characters with their
// entities. html.EscapeString is not used because it writes &#34; for quotes.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
