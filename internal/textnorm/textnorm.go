// Package textnorm cleans free-text fields for analytics: lowercase, no
// accents, no symbols. It backs the normalize pass over the *_norm fields
// of the built collections.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var symbols = regexp.MustCompile(`[^a-z0-9'\s]+`)

// Clean lowercases s, strips diacritics and removes everything that is not
// a letter, digit, apostrophe or whitespace, then trims.
func Clean(s string) string {
	s = strings.ToLower(s)
	s = stripAccents(s)
	s = symbols.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// stripAccents decomposes to NFD, drops combining marks and recomposes.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
