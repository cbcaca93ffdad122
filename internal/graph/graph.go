// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph maintains the citation graph: it links each record's
// references to existing records where identity can be established,
// parks the rest on placeholder nodes, and upgrades placeholders to
// real records when the cited work is finally ingested.
package graph

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/resolve"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

// placeholderKeyLen is how much of the signature goes into the node key.
const placeholderKeyLen = 12

// ReferenceSummary reports what happened to one record's references.
type ReferenceSummary struct {
	Direct      int `json:"direct"`      // edges to existing records
	Placeholder int `json:"placeholder"` // edges to placeholder nodes
	Skipped     int `json:"skipped"`     // nothing usable, or a duplicate target within the batch
}

// Total returns the number of references processed.
func (s ReferenceSummary) Total() int {
	return s.Direct + s.Placeholder + s.Skipped
}

// SweepSummary reports one orphan-placeholder sweep.
type SweepSummary struct {
	Examined int `json:"examined"`
	Deleted  int `json:"deleted"`
	Kept     int `json:"kept"` // gained an edge or vanished mid-sweep
}

// Manager owns citation-graph mutations for the engine.
type Manager struct {
	store    store.Repository
	resolver *resolve.Resolver
	cfg      types.MatchingConfig
	log      *zap.Logger
}

// NewManager builds a Manager. A nil logger disables logging.
func NewManager(repo store.Repository, resolver *resolve.Resolver, cfg types.MatchingConfig, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: repo, resolver: resolver, cfg: cfg, log: log}
}

// ProcessReferences links a record's outgoing references into the
// graph. Each reference resolves to an existing record when identity
// can be established, otherwise to a placeholder keyed on the cited
// work's title signature. All edges commit in one transaction; if a
// target placeholder is upgraded concurrently, the whole batch is
// re-resolved once and retried, which finds the new record directly.
func (m *Manager) ProcessReferences(ctx context.Context, fromLID string, refs []types.Reference) (*ReferenceSummary, error) {
	summary, err := m.applyOnce(ctx, fromLID, refs)
	if errors.Is(err, store.ErrPlaceholderGone) {
		m.log.Debug("placeholder upgraded mid-batch, re-resolving",
			zap.String("from", fromLID))
		summary, err = m.applyOnce(ctx, fromLID, refs)
	}
	if err != nil {
		return nil, err
	}

	m.log.Info("processed references",
		zap.String("from", fromLID),
		zap.Int("direct", summary.Direct),
		zap.Int("placeholder", summary.Placeholder),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (m *Manager) applyOnce(ctx context.Context, fromLID string, refs []types.Reference) (*ReferenceSummary, error) {
	var summary ReferenceSummary
	var edges []types.CitationEdge
	var placeholders []types.PlaceholderNode
	seen := make(map[string]bool) // dedupe edges by target within the batch

	for _, ref := range refs {
		parsed := ref.Parsed
		if parsed == nil {
			parsed = ParseReference(ref.RawText)
		}
		if parsed == nil {
			summary.Skipped++
			continue
		}

		edge, node, err := m.resolveTarget(ctx, fromLID, ref, parsed)
		if err != nil {
			return nil, err
		}
		if seen[edge.ToKey] {
			summary.Skipped++
			continue
		}
		seen[edge.ToKey] = true

		edges = append(edges, edge)
		if node != nil {
			placeholders = append(placeholders, *node)
			summary.Placeholder++
		} else if edge.ToKind == types.KindPlaceholder {
			summary.Placeholder++
		} else {
			summary.Direct++
		}
	}

	if len(edges) == 0 {
		return &summary, nil
	}
	if err := m.store.ApplyReferences(ctx, edges, placeholders); err != nil {
		return nil, fmt.Errorf("applying references of %s: %w", fromLID, err)
	}
	return &summary, nil
}

// resolveTarget finds where one reference edge should point: an
// existing record, an existing placeholder, or a new placeholder node
// (returned alongside the edge).
func (m *Manager) resolveTarget(ctx context.Context, fromLID string, ref types.Reference, parsed *types.ParsedReference) (types.CitationEdge, *types.PlaceholderNode, error) {
	edge := types.CitationEdge{
		FromLID:    fromLID,
		Confidence: ref.Confidence,
		Source:     ref.Source,
	}

	work := resolve.Work{
		Identifiers: types.IdentifierSet{
			DOI:     parsed.DOI,
			ArxivID: parsed.ArxivID,
		},
		Title:   parsed.Title,
		Authors: parsed.Authors,
		Year:    parsed.Year,
	}
	if parsed.Title != "" {
		work.Identifiers.Fingerprint = match.Fingerprint(parsed.Title)
	}

	rec, _, err := m.resolver.Lookup(ctx, work)
	if err != nil {
		return edge, nil, fmt.Errorf("resolving reference: %w", err)
	}
	if rec != nil {
		edge.ToKey = rec.LID
		edge.ToKind = types.KindRecord
		return edge, nil, nil
	}

	// No known record: the edge targets a placeholder. The signature is
	// the title fingerprint, falling back to the raw text fingerprint so
	// even an unparseable citation lands on a stable node.
	signature := work.Identifiers.Fingerprint
	title := parsed.Title
	if signature == "" {
		signature = match.Fingerprint(ref.RawText)
		title = ""
	}

	existing, err := m.findPlaceholder(ctx, signature, title)
	if err != nil {
		return edge, nil, err
	}
	if existing != nil {
		edge.ToKey = existing.Key
		edge.ToKind = types.KindPlaceholder
		return edge, nil, nil
	}

	node := types.PlaceholderNode{
		Key:       "unres-" + signature[:placeholderKeyLen],
		Signature: signature,
		Title:     title,
	}
	edge.ToKey = node.Key
	edge.ToKind = types.KindPlaceholder
	return edge, &node, nil
}

// findPlaceholder looks for a placeholder by exact signature, then by
// fuzzy title similarity, so small citation-text variations of the same
// unknown work converge on one node.
func (m *Manager) findPlaceholder(ctx context.Context, signature, title string) (*types.PlaceholderNode, error) {
	ph, err := m.store.FindPlaceholder(ctx, signature)
	if err == nil {
		return ph, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("finding placeholder: %w", err)
	}
	if title == "" {
		return nil, nil
	}

	nodes, err := m.store.ListPlaceholders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing placeholders: %w", err)
	}
	normalized := match.NormalizeTitle(title)
	for i := range nodes {
		if nodes[i].Title == "" {
			continue
		}
		if match.Ratio(normalized, match.NormalizeTitle(nodes[i].Title)) >= m.cfg.TitleThreshold+m.cfg.ReviewMargin {
			return &nodes[i], nil
		}
	}
	return nil, nil
}

// OnNewRecord upgrades the placeholder standing in for a freshly
// created record, if one exists: every inbound edge is redirected to
// the record and the node disappears, atomically. Losing an upgrade
// race is not an error; the winner already did the work.
func (m *Manager) OnNewRecord(ctx context.Context, rec *types.LiteratureRecord) (int, error) {
	ph, err := m.findPlaceholder(ctx, rec.Identifiers.Fingerprint, rec.Title)
	if err != nil {
		return 0, err
	}
	if ph == nil {
		return 0, nil
	}

	redirected, err := m.store.UpgradePlaceholder(ctx, ph.Key, rec.LID)
	if errors.Is(err, store.ErrPlaceholderGone) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("upgrading placeholder %s: %w", ph.Key, err)
	}

	m.log.Info("upgraded placeholder",
		zap.String("key", ph.Key),
		zap.String("lid", rec.LID),
		zap.Int("redirected", redirected))
	return redirected, nil
}

// SweepOrphans deletes placeholders that no longer have inbound edges.
// A node that gained an edge between listing and deletion is kept.
func (m *Manager) SweepOrphans(ctx context.Context) (*SweepSummary, error) {
	keys, err := m.store.OrphanPlaceholderKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing orphans: %w", err)
	}

	summary := &SweepSummary{Examined: len(keys)}
	for _, key := range keys {
		err := m.store.DeleteIfOrphan(ctx, key)
		switch {
		case err == nil:
			summary.Deleted++
		case errors.Is(err, store.ErrNotOrphan), errors.Is(err, store.ErrNotFound):
			summary.Kept++
		default:
			return nil, fmt.Errorf("deleting orphan %s: %w", key, err)
		}
	}

	if summary.Examined > 0 {
		m.log.Info("swept orphan placeholders",
			zap.Int("examined", summary.Examined),
			zap.Int("deleted", summary.Deleted),
			zap.Int("kept", summary.Kept))
	}
	return summary, nil
}
