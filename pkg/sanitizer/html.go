package sanitizer

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag and returns plain text. Entities produced by
// the policy are unescaped so templates do not escape them twice.
func StripHTML(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
