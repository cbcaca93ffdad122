// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

func testResolver(t *testing.T) (*Resolver, store.Repository) {
	t.Helper()
	repo, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "litgraph.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := types.DefaultEngineConfig()
	return New(repo, cfg.Matching, cfg.LID, nil), repo
}

func work(title string, authors ...string) Work {
	return Work{
		Identifiers: types.IdentifierSet{Fingerprint: match.Fingerprint(title)},
		Title:       title,
		Authors:     authors,
		Year:        2017,
	}
}

func TestResolveCreatesNewRecord(t *testing.T) {
	r, _ := testResolver(t)
	ctx := context.Background()

	res, err := r.ResolveOrCreate(ctx, work("Attention Is All You Need", "Ashish Vaswani", "Noam Shazeer"))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.Flagged)
	assert.NotEmpty(t, res.Record.LID)
}

func TestResolveByDOI(t *testing.T) {
	r, _ := testResolver(t)
	ctx := context.Background()

	w := work("Attention Is All You Need", "Ashish Vaswani")
	w.Identifiers.DOI = "10.5555/3295222"
	first, err := r.ResolveOrCreate(ctx, w)
	require.NoError(t, err)
	require.True(t, first.Created)

	// Same DOI under a completely different title still resolves.
	again := work("Transformer Networks For Sequence Transduction", "A. Vaswani")
	again.Identifiers.DOI = "10.5555/3295222"
	second, err := r.ResolveOrCreate(ctx, again)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "doi", second.MatchedBy)
	assert.Equal(t, first.Record.LID, second.Record.LID)
}

func TestResolveByConfirmationPair(t *testing.T) {
	r, _ := testResolver(t)
	ctx := context.Background()

	first, err := r.ResolveOrCreate(ctx, work("Attention Is All You Need", "Ashish Vaswani", "Noam Shazeer"))
	require.NoError(t, err)
	require.True(t, first.Created)

	// Same normalized title, same author signatures, no shared strong
	// identifier: the confirmation pair establishes identity.
	second, err := r.ResolveOrCreate(ctx, work("Attention is all you need.", "A. Vaswani", "N. Shazeer"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "confirmation", second.MatchedBy)
	assert.Equal(t, first.Record.LID, second.Record.LID)
}

func TestSameTitleDifferentAuthorsStaysSeparate(t *testing.T) {
	r, repo := testResolver(t)
	ctx := context.Background()

	first, err := r.ResolveOrCreate(ctx, work("On Convergence", "Alice Smith", "Bob Jones"))
	require.NoError(t, err)

	second, err := r.ResolveOrCreate(ctx, work("On Convergence", "Carol White", "Dan Brown"))
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.False(t, second.Flagged)
	assert.NotEqual(t, first.Record.LID, second.Record.LID)

	flags, err := repo.PendingReviewFlags(ctx)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestNearThresholdFlagsAndCreates(t *testing.T) {
	r, repo := testResolver(t)
	ctx := context.Background()

	// Candidate has ten authors; the incoming work repeats seven of
	// them, so the signature Jaccard is exactly 0.70: inside the review
	// band, below the auto-merge bar.
	candAuthors := []string{
		"Sam Adams", "Sam Baker", "Sam Clark", "Sam Davis", "Sam Evans",
		"Sam Foster", "Sam Garcia", "Sam Harris", "Sam Irving", "Sam Jones",
	}
	inAuthors := candAuthors[:7]

	first, err := r.ResolveOrCreate(ctx, work("Large Collaboration Survey", candAuthors...))
	require.NoError(t, err)

	second, err := r.ResolveOrCreate(ctx, work("Large Collaboration Survey", inAuthors...))
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.True(t, second.Flagged)
	assert.NotEqual(t, first.Record.LID, second.Record.LID)

	flags, err := repo.PendingReviewFlags(ctx)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, first.Record.LID, flags[0].CandidateLID)
	assert.InDelta(t, 0.70, flags[0].AuthorScore, 1e-9)
	assert.NotEmpty(t, flags[0].ID)
}

func TestConfirmationPrefersEarliestRecord(t *testing.T) {
	r, repo := testResolver(t)
	ctx := context.Background()

	title := "Duplicate Candidate Study"
	older := types.LiteratureRecord{
		LID:         "lid-old",
		Identifiers: types.IdentifierSet{Fingerprint: match.Fingerprint(title)},
		Title:       title,
		Authors:     []string{"Alice Smith"},
		CreatedAt:   time.Now().UTC().Add(-time.Hour),
	}
	newer := older
	newer.LID = "lid-new"
	newer.CreatedAt = time.Now().UTC()
	require.NoError(t, repo.InsertRecord(ctx, newer))
	require.NoError(t, repo.InsertRecord(ctx, older))

	res, err := r.ResolveOrCreate(ctx, work(title, "Alice Smith"))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "lid-old", res.Record.LID)
}

func TestMatchMergesNewIdentifiers(t *testing.T) {
	r, repo := testResolver(t)
	ctx := context.Background()

	w := work("Attention Is All You Need", "Ashish Vaswani")
	w.Identifiers.DOI = "10.5555/3295222"
	_, err := r.ResolveOrCreate(ctx, w)
	require.NoError(t, err)

	again := work("Attention Is All You Need", "Ashish Vaswani")
	again.Identifiers.DOI = "10.5555/3295222"
	again.Identifiers.ArxivID = "1706.03762"
	again.Identifiers.SourceURLs = []string{"https://arxiv.org/abs/1706.03762"}
	res, err := r.ResolveOrCreate(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, "1706.03762", res.Record.Identifiers.ArxivID)

	stored, err := repo.FindByLID(ctx, res.Record.LID)
	require.NoError(t, err)
	assert.Equal(t, "1706.03762", stored.Identifiers.ArxivID)
	assert.Equal(t, []string{"https://arxiv.org/abs/1706.03762"}, stored.Identifiers.SourceURLs)
}

// missOnce wraps a Repository and pretends the first identifier lookup
// finds nothing, reproducing the window where a concurrent ingestion
// commits between lookup and insert.
type missOnce struct {
	store.Repository
	missed bool
}

func (m *missOnce) FindByIdentifier(ctx context.Context, kind store.IdentifierKind, value string) (*types.LiteratureRecord, error) {
	if !m.missed {
		m.missed = true
		return nil, store.ErrNotFound
	}
	return m.Repository.FindByIdentifier(ctx, kind, value)
}

func TestInsertRaceAdoptsWinner(t *testing.T) {
	_, repo := testResolver(t)
	ctx := context.Background()

	w := work("Raced Submission", "Alice Smith")
	w.Identifiers.DOI = "10.1000/race"
	winner := types.LiteratureRecord{
		LID:         "lid-winner",
		Identifiers: w.Identifiers,
		Title:       w.Title,
		Authors:     w.Authors,
	}
	require.NoError(t, repo.InsertRecord(ctx, winner))

	cfg := types.DefaultEngineConfig()
	racing := New(&missOnce{Repository: repo}, cfg.Matching, cfg.LID, nil)

	// The lookup miss forces the resolver down the insert path, which
	// must detect the unique-constraint conflict and adopt the winner.
	w2 := w
	w2.Title = "Raced Submission Preprint"
	w2.Identifiers.Fingerprint = match.Fingerprint(w2.Title)
	res, err := racing.ResolveOrCreate(ctx, w2)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "doi", res.MatchedBy)
	assert.Equal(t, "lid-winner", res.Record.LID)
}
