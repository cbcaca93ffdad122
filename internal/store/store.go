// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists literature records, metadata provenance, and
// the citation graph. The engine depends on the Repository interface;
// the production implementation is SQLite-backed.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/litgraph/pkg/types"
)

var (
	// ErrNotFound reports a missing record or placeholder.
	ErrNotFound = errors.New("not found")

	// ErrPlaceholderGone reports that a placeholder disappeared between
	// resolution and write, normally because a concurrent ingestion
	// upgraded it. Callers re-resolve and create a direct edge.
	ErrPlaceholderGone = errors.New("placeholder gone")

	// ErrNotOrphan reports a refused deletion of a placeholder that
	// still has inbound edges.
	ErrNotOrphan = errors.New("placeholder has inbound edges")
)

// IdentifierConflictError reports that a record insert collided with an
// existing record on a unique identifier. The caller treats the
// submission as that existing record.
type IdentifierConflictError struct {
	Kind string // "doi", "arxiv", "pmid", or "lid"
	LID  string // the record already holding the identifier
}

func (e *IdentifierConflictError) Error() string {
	return fmt.Sprintf("identifier conflict on %s: already held by %s", e.Kind, e.LID)
}

// IdentifierKind selects the identifier column for exact lookup.
type IdentifierKind string

const (
	KindDOI   IdentifierKind = "doi"
	KindArxiv IdentifierKind = "arxiv"
	KindPMID  IdentifierKind = "pmid"
)

// GraphCounts summarizes the stored graph, for sweeps and CLI stats.
type GraphCounts struct {
	Records       int `json:"records"`
	Placeholders  int `json:"placeholders"`
	Edges         int `json:"edges"`
	PendingReview int `json:"pending_review"`
}

// Repository is the persistence abstraction the engine depends on.
type Repository interface {
	// InsertRecord writes a new record. It relies on unique identifier
	// constraints for insert-then-verify: a collision returns
	// *IdentifierConflictError carrying the existing LID.
	InsertRecord(ctx context.Context, rec types.LiteratureRecord) error

	// UpsertRecord refreshes the descriptive fields and identifiers of
	// an existing record without touching its LID or creation time.
	UpsertRecord(ctx context.Context, rec types.LiteratureRecord) error

	FindByLID(ctx context.Context, lid string) (*types.LiteratureRecord, error)
	FindByIdentifier(ctx context.Context, kind IdentifierKind, value string) (*types.LiteratureRecord, error)

	// FindByFingerprint returns all records sharing a content
	// fingerprint, ordered by creation time ascending so the caller's
	// earliest-created tie-break is a positional choice.
	FindByFingerprint(ctx context.Context, fingerprint string) ([]types.LiteratureRecord, error)

	LIDExists(ctx context.Context, lid string) (bool, error)

	// Fields returns the per-field provenance map of a record.
	Fields(ctx context.Context, lid string) (map[string]types.FieldProvenance, error)

	// PutField writes one field value with its provenance.
	PutField(ctx context.Context, lid, field string, fp types.FieldProvenance) error

	// CreateEdge inserts a single citation edge (idempotent per
	// (from, to) pair).
	CreateEdge(ctx context.Context, edge types.CitationEdge) error

	// ApplyReferences commits one record's outgoing edges together with
	// any newly required placeholders as a single transaction. An edge
	// targeting a placeholder that no longer exists (and is not created
	// by this batch) fails the whole batch with ErrPlaceholderGone.
	ApplyReferences(ctx context.Context, edges []types.CitationEdge, placeholders []types.PlaceholderNode) error

	FindPlaceholder(ctx context.Context, signature string) (*types.PlaceholderNode, error)
	ListPlaceholders(ctx context.Context) ([]types.PlaceholderNode, error)

	// UpgradePlaceholder atomically redirects every inbound edge of the
	// placeholder to newLID and deletes the node. It returns the number
	// of redirected edges, or ErrPlaceholderGone if the node was already
	// upgraded by a concurrent ingestion.
	UpgradePlaceholder(ctx context.Context, oldKey, newLID string) (int, error)

	// DeleteIfOrphan removes the placeholder only when it has zero
	// inbound edges; otherwise it returns ErrNotOrphan.
	DeleteIfOrphan(ctx context.Context, key string) error

	// OrphanPlaceholderKeys lists placeholders with zero inbound edges.
	OrphanPlaceholderKeys(ctx context.Context) ([]string, error)

	EdgesTo(ctx context.Context, key string) ([]types.CitationEdge, error)
	EdgesFrom(ctx context.Context, lid string) ([]types.CitationEdge, error)

	SaveReviewFlag(ctx context.Context, flag types.ReviewFlag) error
	PendingReviewFlags(ctx context.Context) ([]types.ReviewFlag, error)

	Counts(ctx context.Context) (GraphCounts, error)

	Close() error
}
