// Package slug converts titles into URL-safe identifiers.
package slug

import (
	"fmt"
	"strings"
	"unicode"
)

// Make converts text to a lowercase hyphenated slug: spaces become hyphens,
// non-word characters are dropped, runs of hyphens collapse, and leading or
// trailing hyphens are trimmed.
func Make(text string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// WithSuffix returns the slug for the nth collision of base: base itself for
// n == 0, otherwise base-n.
func WithSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
