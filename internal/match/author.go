// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"
	"unicode"
)

// nameSuffixes are generational suffixes ignored when picking a surname
// from "First Last" ordering.
var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

// Signature derives the matching signature of an author name: folded
// lower-case surname plus the first initial of the given name. Both
// "Ashish Vaswani" and "Vaswani, Ashish" yield "vaswani.a". A name with
// no recoverable surname yields "".
func Signature(name string) string {
	name = strings.TrimSpace(Fold(name))
	if name == "" {
		return ""
	}

	var surname, given string
	if i := strings.IndexByte(name, ','); i >= 0 {
		surname = name[:i]
		given = strings.TrimSpace(name[i+1:])
	} else {
		fields := strings.Fields(name)
		for len(fields) > 1 && nameSuffixes[cleanToken(fields[len(fields)-1])] {
			fields = fields[:len(fields)-1]
		}
		surname = fields[len(fields)-1]
		given = strings.Join(fields[:len(fields)-1], " ")
	}

	surname = cleanToken(surname)
	if surname == "" {
		return ""
	}

	initial := firstLetter(given)
	if initial == 0 {
		return surname
	}
	return surname + "." + string(initial)
}

// Signatures returns the signature set of an author list, dropping names
// that yield no signature.
func Signatures(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if sig := Signature(n); sig != "" {
			set[sig] = struct{}{}
		}
	}
	return set
}

// Jaccard computes |a ∩ b| / |a ∪ b|. Either set being empty scores 0:
// an empty author list can never confirm an identity match.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for sig := range a {
		if _, ok := b[sig]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// cleanToken lower-cases a token and strips everything but letters.
func cleanToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// firstLetter returns the first letter rune of s, lower-cased, or 0.
func firstLetter(s string) rune {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
	}
	return 0
}
