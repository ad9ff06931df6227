// Package genre holds the closed genre vocabulary and the normalization that
// maps user input onto it.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a string to a lowercase hyphenated slug.
// "Science Fiction" -> "science-fiction".
// "Éxito/Drama" -> "exito-drama".
func Slugify(s string) string {
	// Decompose accents so the base letter survives the ASCII filter.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
