package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a company name for cache keys and equality
// comparisons: trims, removes internal whitespace, and folds full-width
// punctuation (（） and friends) to half-width. No suffix stripping.
func Normalize(name string) string {
	n := strings.TrimSpace(name)
	n = whitespaceRe.ReplaceAllString(n, "")
	return width.Narrow.String(n)
}
