// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data structures for the litgraph engine:
// literature records, references, citation edges, placeholder nodes, and
// the configuration objects the engine components are built from.
package types

import "time"

// RawIdentifiers holds identifier strings exactly as received from a
// submission source, before normalization. Any field may be empty or
// malformed.
type RawIdentifiers struct {
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	PMID    string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	URLs    []string `json:"urls,omitempty" yaml:"urls,omitempty"`
}

// IdentifierSet holds canonical identifiers for a literature record.
// Each field is optional; Fingerprint is derived from the normalized
// title and is always present once a record exists.
type IdentifierSet struct {
	// DOI is lower-cased with any resolver prefix removed.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the version-stripped arXiv identifier (e.g. "1706.03762").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// PMID is the bare PubMed numeric identifier.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Fingerprint is the content fingerprint of the normalized title,
	// used as a fast duplicate-candidate key.
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	// SourceURLs lists cleaned URLs the record was seen at.
	SourceURLs []string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`
}

// Empty reports whether the set carries no strong identifier
// (fingerprint and URLs do not count).
func (s IdentifierSet) Empty() bool {
	return s.DOI == "" && s.ArxivID == "" && s.PMID == ""
}

// LiteratureRecord is a resolved work. The LID is immutable once
// assigned and is never reused.
type LiteratureRecord struct {
	LID         string        `json:"lid" yaml:"lid"`
	Identifiers IdentifierSet `json:"identifiers" yaml:"identifiers"`

	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue   string   `json:"venue,omitempty" yaml:"venue,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// FieldProvenance records which source contributed a metadata field
// value and at what priority. A field is only overwritten by a source
// with strictly higher priority.
type FieldProvenance struct {
	Value    string `json:"value" yaml:"value"`
	Source   string `json:"source" yaml:"source"`
	Priority int    `json:"priority" yaml:"priority"`
}

// ParsedReference is the structured form of a citation, either supplied
// by an external parser or recovered opportunistically from the raw text.
type ParsedReference struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
}

// Reference is one outgoing citation of a record.
type Reference struct {
	// RawText is the citation string as extracted from the source.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Source names the extraction attempt that produced this reference.
	Source string `json:"source" yaml:"source"`

	// Parsed is the structured form, if the extractor provided one.
	Parsed *ParsedReference `json:"parsed,omitempty" yaml:"parsed,omitempty"`

	// Confidence is the extractor's confidence in this reference, 0..1.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// NodeKind distinguishes the target of a citation edge.
type NodeKind string

const (
	KindRecord      NodeKind = "record"
	KindPlaceholder NodeKind = "placeholder"
)

// CitationEdge links a citing record to a cited node. The target is a
// LiteratureRecord LID or a PlaceholderNode key depending on ToKind.
type CitationEdge struct {
	FromLID    string   `json:"from_lid" yaml:"from_lid"`
	ToKey      string   `json:"to_key" yaml:"to_key"`
	ToKind     NodeKind `json:"to_kind" yaml:"to_kind"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Source     string   `json:"source" yaml:"source"`
}

// PlaceholderNode stands in for a cited work that has not been ingested
// yet. It exists only while it has at least one inbound edge; an upgrade
// replaces it with a real record and preserves every edge.
type PlaceholderNode struct {
	// Key is the lid-like identifier of the node (derived from Signature).
	Key string `json:"key" yaml:"key"`

	// Signature is the content fingerprint of the best-known title.
	Signature string `json:"signature" yaml:"signature"`

	// Title is the best-known raw or parsed title of the cited work.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// CitingCount is the number of distinct records citing this node.
	CitingCount int `json:"citing_count" yaml:"citing_count"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ReviewFlag marks a near-threshold identity match that was not merged
// automatically and is waiting for manual review.
type ReviewFlag struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	CandidateLID string    `json:"candidate_lid" yaml:"candidate_lid"`
	TitleScore   float64   `json:"title_score" yaml:"title_score"`
	AuthorScore  float64   `json:"author_score" yaml:"author_score"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// ExtractionAttempt is the result of one metadata extraction pass over a
// submission, possibly partial. Fields use the canonical field names
// ("title", "authors", "year", "venue", "abstract", "doi").
type ExtractionAttempt struct {
	SourceName    string            `json:"source_name" yaml:"source_name"`
	Priority      int               `json:"priority" yaml:"priority"`
	Fields        map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	RawReferences []Reference       `json:"raw_references,omitempty" yaml:"raw_references,omitempty"`
}

// Submission is one incoming bibliographic record from the orchestration
// layer, together with the extraction attempts already run against it.
type Submission struct {
	Identifiers   RawIdentifiers      `json:"identifiers" yaml:"identifiers"`
	Title         string              `json:"title" yaml:"title"`
	Authors       []string            `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year          int                 `json:"year,omitempty" yaml:"year,omitempty"`
	Venue         string              `json:"venue,omitempty" yaml:"venue,omitempty"`
	RawReferences []Reference         `json:"raw_references,omitempty" yaml:"raw_references,omitempty"`
	Attempts      []ExtractionAttempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}
