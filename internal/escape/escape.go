// Package escape neutralises untrusted text before it is interpolated into markup.
package escape

import "strings"

var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// String replaces & < > " ' with their entity equivalents
func String(s string) string {
	return replacer.Replace(s)
}
