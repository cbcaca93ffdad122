// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match provides the text-matching primitives shared by identity
// resolution and citation-graph placeholder matching: title
// normalization, sequence-ratio similarity, author signatures, and
// content fingerprints.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold removes Unicode diacritics: "Müller" becomes "Muller". On a
// transform error the input is returned unchanged.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeTitle canonicalizes a title for comparison: diacritics
// folded, lower-cased, punctuation replaced by spaces, whitespace
// collapsed.
func NormalizeTitle(s string) string {
	s = strings.ToLower(Fold(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
