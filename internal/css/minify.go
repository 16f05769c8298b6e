package css

import (
	"regexp"
	"strings"
)

var (
	commentRegex    = regexp.MustCompile(`/\*[^*]*\*+([^/*][^*]*\*+)*/`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	punctRegex      = regexp.MustCompile(` ?([{};,]) ?`)
)

// Minify strips comments, collapses whitespace to single spaces, removes
// spaces next to braces, semicolons and commas, and trims. Minify(Minify(s))
// equals Minify(s).
func Minify(s string) string {
	// Removing one comment can splice a new one together, e.g. "//**/*x*/".
	for {
		stripped := commentRegex.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = punctRegex.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
