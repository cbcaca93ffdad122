// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier canonicalizes raw bibliographic identifiers (DOI,
// arXiv id, PMID, URLs) into a comparable form. Malformed values are
// dropped with a warning, never fatally.
package identifier

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/pkg/types"
)

// doiPattern matches a bare DOI: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// doiPrefixes are resolver prefixes stripped before validation.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// arxivNewPattern matches post-2007 arXiv IDs with an optional version:
// "2301.07041", "arXiv:2301.07041v2".
var arxivNewPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5})(?:v\d+)?$`)

// arxivOldPattern matches pre-2007 archive/subject-class IDs:
// "hep-th/9901001", "math.GT/0309136".
var arxivOldPattern = regexp.MustCompile(`^(?:arXiv:)?([a-z-]+(?:\.[A-Z]{2})?/\d{7})(?:v\d+)?$`)

// pmidPattern matches a PubMed ID with an optional "PMID:" prefix.
var pmidPattern = regexp.MustCompile(`^(?:PMID:?\s*)?(\d{1,8})$`)

// trackingParams are query parameters removed during URL cleaning.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
	"ref":    true,
}

// DOI returns the canonical form of a DOI: resolver prefix removed,
// lower-cased. It rejects values that do not look like a DOI.
func DOI(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(strings.ToLower(s), p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.ToLower(s)
	if !doiPattern.MatchString(s) {
		return "", fmt.Errorf("malformed DOI %q", raw)
	}
	return s, nil
}

// Arxiv returns the version-stripped arXiv identifier.
func Arxiv(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if m := arxivNewPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if m := arxivOldPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("malformed arXiv id %q", raw)
}

// PMID returns the bare numeric PubMed identifier.
func PMID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	m := pmidPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("malformed PMID %q", raw)
	}
	return strings.TrimLeft(m[1], "0"), nil
}

// URL returns a cleaned URL: host lower-cased, tracking parameters and
// fragment removed. Only http and https URLs are accepted.
func URL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("malformed URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("malformed URL %q: unsupported scheme", raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if trackingParams[key] || strings.HasPrefix(key, "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Normalize canonicalizes a full identifier set. Malformed fields are
// dropped with a logged warning; normalization never fails.
func Normalize(raw types.RawIdentifiers, log *zap.Logger) types.IdentifierSet {
	var set types.IdentifierSet

	if raw.DOI != "" {
		if doi, err := DOI(raw.DOI); err != nil {
			log.Warn("dropping identifier", zap.String("kind", "doi"), zap.Error(err))
		} else {
			set.DOI = doi
		}
	}
	if raw.ArxivID != "" {
		if id, err := Arxiv(raw.ArxivID); err != nil {
			log.Warn("dropping identifier", zap.String("kind", "arxiv"), zap.Error(err))
		} else {
			set.ArxivID = id
		}
	}
	if raw.PMID != "" {
		if id, err := PMID(raw.PMID); err != nil {
			log.Warn("dropping identifier", zap.String("kind", "pmid"), zap.Error(err))
		} else {
			set.PMID = id
		}
	}
	for _, rawURL := range raw.URLs {
		cleaned, err := URL(rawURL)
		if err != nil {
			log.Warn("dropping identifier", zap.String("kind", "url"), zap.Error(err))
			continue
		}
		set.SourceURLs = append(set.SourceURLs, cleaned)
	}

	return set
}
