package seo

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes text for use in HTML text or quoted attribute position.
// The sitemap serializer uses the same rules for XML text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
