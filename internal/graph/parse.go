// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/litgraph/internal/identifier"
	"github.com/pdiddy/litgraph/pkg/types"
)

// Patterns for opportunistic recovery of structure from raw citation
// text. Best effort only: a reference that yields nothing usable still
// becomes a placeholder keyed on its raw text.
var (
	doiInTextRe   = regexp.MustCompile(`\b(10\.\d{4,9}/[^\s,;"']+)`)
	arxivInTextRe = regexp.MustCompile(`\barXiv:\s*(\d{4}\.\d{4,5})(?:v\d+)?\b`)
	yearInTextRe  = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	// authorBlockRe matches a leading author block such as
	// "Smith, A., Jones, B. and Brown, C." or "Vaswani, A. et al."
	authorBlockRe = regexp.MustCompile(
		`^((?:[A-Z][\pL'-]+(?:,\s+[A-Z]\.?)?(?:,?\s+(?:and|&)\s+)?)+(?:\s*et\s+al\.?)?)\s*[.]?\s+(.+)$`)

	// initialRe protects single-letter initials from period splitting.
	initialRe = regexp.MustCompile(`\b([A-Z])\.`)
)

// ParseReference recovers whatever structure it can from one raw
// citation string. It returns nil when the text yields neither a title
// nor an identifier.
func ParseReference(raw string) *types.ParsedReference {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed types.ParsedReference

	if m := doiInTextRe.FindStringSubmatch(raw); m != nil {
		if doi, err := identifier.DOI(m[1]); err == nil {
			parsed.DOI = doi
		}
	}
	if m := arxivInTextRe.FindStringSubmatch(raw); m != nil {
		if id, err := identifier.Arxiv(m[1]); err == nil {
			parsed.ArxivID = id
		}
	}
	if m := yearInTextRe.FindStringSubmatch(raw); m != nil {
		parsed.Year, _ = strconv.Atoi(m[1])
	}

	// Strip a leading bibliography key like "[12]".
	body := strings.TrimSpace(strings.TrimLeft(raw, "[0123456789] "))

	if m := authorBlockRe.FindStringSubmatch(body); m != nil && looksLikeAuthors(m[1]) {
		parsed.Authors = splitAuthorBlock(m[1])
		if segments := splitSegments(m[2]); len(segments) > 0 {
			parsed.Title = segments[0]
		}
	} else if segments := splitSegments(body); len(segments) > 0 {
		parsed.Title = segments[0]
	}

	// A bare year or author list is not enough to anchor a citation.
	if parsed.Title == "" && parsed.DOI == "" && parsed.ArxivID == "" {
		return nil
	}
	return &parsed
}

// splitSegments breaks citation text at sentence periods while keeping
// initials ("A.") and common abbreviations intact.
func splitSegments(text string) []string {
	safe := strings.ReplaceAll(text, "et al.", "et al\x00")
	safe = strings.ReplaceAll(safe, "e.g.", "e\x00g\x00")
	safe = strings.ReplaceAll(safe, "i.e.", "i\x00e\x00")
	safe = initialRe.ReplaceAllString(safe, "${1}\x00")

	var segments []string
	for _, part := range strings.Split(safe, ". ") {
		part = strings.ReplaceAll(part, "\x00", ".")
		part = strings.TrimRight(part, ".")
		part = strings.TrimSpace(part)
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// looksLikeAuthors guards against a capitalized first title word being
// mistaken for a one-name author block.
func looksLikeAuthors(block string) bool {
	return strings.Contains(block, ",") ||
		strings.Contains(block, " and ") ||
		strings.Contains(block, "&") ||
		strings.Contains(block, "et al")
}

// splitAuthorBlock breaks "Smith, A., Jones, B. and Brown, C." into
// individual names. The "et al." marker is dropped; it carries no name.
func splitAuthorBlock(block string) []string {
	block = strings.TrimSpace(strings.TrimRight(block, ". "))
	block = strings.TrimSuffix(block, "et al")
	block = strings.ReplaceAll(block, " & ", " and ")

	var authors []string
	for _, half := range strings.Split(block, " and ") {
		for _, name := range splitNameList(half) {
			authors = append(authors, name)
		}
	}
	return authors
}

// splitNameList splits "Smith, A., Jones, B." on the commas between
// authors, not the commas inside "Surname, Initial" pairs.
func splitNameList(list string) []string {
	parts := strings.Split(list, ",")
	var names []string
	for i := 0; i < len(parts); i++ {
		name := strings.TrimSpace(parts[i])
		if name == "" {
			continue
		}
		// A following single-initial token belongs to this surname.
		if i+1 < len(parts) {
			next := strings.TrimSuffix(strings.TrimSpace(parts[i+1]), ".")
			if len(next) == 1 {
				name = name + ", " + next + "."
				i++
			}
		}
		names = append(names, name)
	}
	return names
}
