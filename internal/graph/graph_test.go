// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/resolve"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

func testManager(t *testing.T) (*Manager, store.Repository) {
	t.Helper()
	repo, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "litgraph.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := types.DefaultEngineConfig()
	resolver := resolve.New(repo, cfg.Matching, cfg.LID, nil)
	return NewManager(repo, resolver, cfg.Matching, nil), repo
}

func insertRecord(t *testing.T, repo store.Repository, lid, title string, authors ...string) types.LiteratureRecord {
	t.Helper()
	rec := types.LiteratureRecord{
		LID:         lid,
		Identifiers: types.IdentifierSet{Fingerprint: match.Fingerprint(title)},
		Title:       title,
		Authors:     authors,
	}
	require.NoError(t, repo.InsertRecord(context.Background(), rec))
	return rec
}

func parsedRef(title string, authors ...string) types.Reference {
	return types.Reference{
		RawText:    title,
		Source:     "grobid",
		Confidence: 0.9,
		Parsed:     &types.ParsedReference{Title: title, Authors: authors},
	}
}

func TestProcessReferencesLinksKnownRecord(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()

	insertRecord(t, repo, "lid-citer", "Citing Paper", "Alice Smith")
	cited := insertRecord(t, repo, "lid-cited", "Attention Is All You Need", "Ashish Vaswani")

	summary, err := m.ProcessReferences(ctx, "lid-citer", []types.Reference{
		parsedRef("Attention Is All You Need", "A. Vaswani"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Direct)
	assert.Equal(t, 0, summary.Placeholder)

	edges, err := repo.EdgesFrom(ctx, "lid-citer")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, cited.LID, edges[0].ToKey)
	assert.Equal(t, types.KindRecord, edges[0].ToKind)
	assert.Equal(t, 0.9, edges[0].Confidence)
}

func TestProcessReferencesCreatesPlaceholder(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-citer", "Citing Paper", "Alice Smith")

	summary, err := m.ProcessReferences(ctx, "lid-citer", []types.Reference{
		parsedRef("An Unknown Cited Work", "Bob Jones"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Placeholder)

	ph, err := repo.FindPlaceholder(ctx, match.Fingerprint("An Unknown Cited Work"))
	require.NoError(t, err)
	assert.Equal(t, "An Unknown Cited Work", ph.Title)
	assert.Equal(t, 1, ph.CitingCount)

	edges, err := repo.EdgesFrom(ctx, "lid-citer")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, ph.Key, edges[0].ToKey)
	assert.Equal(t, types.KindPlaceholder, edges[0].ToKind)
}

func TestTwoCitersShareOnePlaceholder(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-a", "Paper A", "Alice Smith")
	insertRecord(t, repo, "lid-b", "Paper B", "Bob Jones")

	refs := []types.Reference{parsedRef("An Unknown Cited Work", "Carol White")}
	_, err := m.ProcessReferences(ctx, "lid-a", refs)
	require.NoError(t, err)
	_, err = m.ProcessReferences(ctx, "lid-b", refs)
	require.NoError(t, err)

	nodes, err := repo.ListPlaceholders(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 2, nodes[0].CitingCount)
}

func TestDuplicateReferencesDeduped(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-a", "Paper A", "Alice Smith")

	summary, err := m.ProcessReferences(ctx, "lid-a", []types.Reference{
		parsedRef("An Unknown Cited Work", "Carol White"),
		parsedRef("An unknown cited work.", "C. White"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Placeholder)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total())

	edges, err := repo.EdgesFrom(ctx, "lid-a")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestUnparseableReferenceSkipped(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-a", "Paper A", "Alice Smith")

	summary, err := m.ProcessReferences(ctx, "lid-a", []types.Reference{
		{RawText: "   ", Source: "grobid"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)

	edges, err := repo.EdgesFrom(ctx, "lid-a")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestOnNewRecordUpgradesPlaceholder(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-a", "Paper A", "Alice Smith")

	_, err := m.ProcessReferences(ctx, "lid-a", []types.Reference{
		parsedRef("Attention Is All You Need", "A. Vaswani"),
	})
	require.NoError(t, err)

	rec := insertRecord(t, repo, "lid-new", "Attention Is All You Need", "Ashish Vaswani")
	redirected, err := m.OnNewRecord(ctx, &rec)
	require.NoError(t, err)
	assert.Equal(t, 1, redirected)

	nodes, err := repo.ListPlaceholders(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	inbound, err := repo.EdgesTo(ctx, "lid-new")
	require.NoError(t, err)
	require.Len(t, inbound, 1)
	assert.Equal(t, "lid-a", inbound[0].FromLID)
	assert.Equal(t, types.KindRecord, inbound[0].ToKind)
}

// upgradeOnApply upgrades one placeholder right before the first
// ApplyReferences call goes through, standing in for a concurrent
// ingestion that wins the upgrade race mid-batch.
type upgradeOnApply struct {
	store.Repository
	key    string
	winner types.LiteratureRecord
	fired  bool
}

func (u *upgradeOnApply) ApplyReferences(ctx context.Context, edges []types.CitationEdge, placeholders []types.PlaceholderNode) error {
	if !u.fired {
		u.fired = true
		if err := u.Repository.InsertRecord(ctx, u.winner); err != nil {
			return err
		}
		if _, err := u.Repository.UpgradePlaceholder(ctx, u.key, u.winner.LID); err != nil {
			return err
		}
	}
	return u.Repository.ApplyReferences(ctx, edges, placeholders)
}

func TestUpgradeRaceLoserLinksRecordDirectly(t *testing.T) {
	repo, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "litgraph.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	signature := match.Fingerprint("Attention Is All You Need")
	phKey := "unres-" + signature[:placeholderKeyLen]
	require.NoError(t, repo.ApplyReferences(ctx, nil, []types.PlaceholderNode{
		{Key: phKey, Signature: signature, Title: "Attention Is All You Need"},
	}))

	wrapped := &upgradeOnApply{
		Repository: repo,
		key:        phKey,
		winner: types.LiteratureRecord{
			LID:         "lid-winner",
			Identifiers: types.IdentifierSet{DOI: "10.5555/3295222", Fingerprint: signature},
			Title:       "Attention Is All You Need",
			Authors:     []string{"Ashish Vaswani"},
		},
	}
	cfg := types.DefaultEngineConfig()
	resolver := resolve.New(wrapped, cfg.Matching, cfg.LID, nil)
	m := NewManager(wrapped, resolver, cfg.Matching, nil)

	insertRecord(t, repo, "lid-citer", "Citing Paper", "Alice Smith")
	ref := parsedRef("Attention Is All You Need", "A. Vaswani")
	ref.Parsed.DOI = "10.5555/3295222"

	// The first batch targets the placeholder, loses the race, and the
	// retried batch must land a direct edge on the upgraded record.
	summary, err := m.ProcessReferences(ctx, "lid-citer", []types.Reference{ref})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Direct)
	assert.Zero(t, summary.Placeholder)
	assert.True(t, wrapped.fired)

	edges, err := repo.EdgesFrom(ctx, "lid-citer")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "lid-winner", edges[0].ToKey)
	assert.Equal(t, types.KindRecord, edges[0].ToKind)
	assert.Equal(t, 0.9, edges[0].Confidence)

	nodes, err := repo.ListPlaceholders(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestOnNewRecordWithoutPlaceholderIsNoop(t *testing.T) {
	m, _ := testManager(t)
	ctx := context.Background()

	rec := types.LiteratureRecord{
		LID:         "lid-x",
		Identifiers: types.IdentifierSet{Fingerprint: match.Fingerprint("Never Cited")},
		Title:       "Never Cited",
	}
	redirected, err := m.OnNewRecord(ctx, &rec)
	require.NoError(t, err)
	assert.Zero(t, redirected)
}

func TestSweepOrphans(t *testing.T) {
	m, repo := testManager(t)
	ctx := context.Background()
	insertRecord(t, repo, "lid-a", "Paper A", "Alice Smith")

	// One cited placeholder and one orphan.
	_, err := m.ProcessReferences(ctx, "lid-a", []types.Reference{
		parsedRef("A Cited Unknown", "Bob Jones"),
	})
	require.NoError(t, err)
	require.NoError(t, repo.ApplyReferences(ctx, nil, []types.PlaceholderNode{
		{Key: "unres-orphan", Signature: "sig-orphan"},
	}))

	summary, err := m.SweepOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 1, summary.Deleted)
	assert.Zero(t, summary.Kept)

	nodes, err := repo.ListPlaceholders(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "A Cited Unknown", nodes[0].Title)
}
