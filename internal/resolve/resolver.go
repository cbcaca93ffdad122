// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve decides whether an incoming work is already known.
// Resolution runs in two phases: exact identifier lookup (DOI, arXiv,
// PMID), then fingerprint-blocked fuzzy confirmation over title
// similarity and author-signature overlap. Near-threshold pairs are
// never merged automatically; they are flagged for review and the
// submission becomes a new record.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/internal/lid"
	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

// Work is the identity-bearing part of a submission, after identifier
// normalization.
type Work struct {
	Identifiers types.IdentifierSet
	Title       string
	Authors     []string
	Year        int
	Venue       string
}

// Candidate is one existing record scored against an incoming work.
type Candidate struct {
	Record      types.LiteratureRecord
	TitleScore  float64
	AuthorScore float64
}

// Result reports the outcome of resolving one work.
type Result struct {
	// Record is the resolved record: an existing one on a match, or the
	// freshly created one.
	Record *types.LiteratureRecord

	// Created reports that no existing record matched and a new one was
	// inserted.
	Created bool

	// MatchedBy names what established identity: "doi", "arxiv", "pmid",
	// or "confirmation". Empty when Created.
	MatchedBy string

	// Flagged reports that a near-threshold candidate was recorded for
	// manual review before the new record was created.
	Flagged bool
}

// Resolver matches incoming works against the store and creates records
// for the unmatched ones.
type Resolver struct {
	store  store.Repository
	cfg    types.MatchingConfig
	lidCfg types.LIDConfig
	log    *zap.Logger
}

// New builds a Resolver. A nil logger disables logging.
func New(repo store.Repository, cfg types.MatchingConfig, lidCfg types.LIDConfig, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{store: repo, cfg: cfg, lidCfg: lidCfg, log: log}
}

// Match looks for an existing record for the work without creating
// anything. It returns (nil, "", nil) when no record matches.
func (r *Resolver) Match(ctx context.Context, work Work) (*types.LiteratureRecord, string, error) {
	rec, matchedBy, _, err := r.match(ctx, work, true)
	return rec, matchedBy, err
}

// Lookup matches the work without side effects: near-threshold
// candidates are not flagged for review. Citation linking uses this,
// since parsed reference text is too noisy to review.
func (r *Resolver) Lookup(ctx context.Context, work Work) (*types.LiteratureRecord, string, error) {
	rec, matchedBy, _, err := r.match(ctx, work, false)
	return rec, matchedBy, err
}

func (r *Resolver) match(ctx context.Context, work Work, flagNear bool) (*types.LiteratureRecord, string, bool, error) {
	lookups := []struct {
		kind  store.IdentifierKind
		value string
	}{
		{store.KindDOI, work.Identifiers.DOI},
		{store.KindArxiv, work.Identifiers.ArxivID},
		{store.KindPMID, work.Identifiers.PMID},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		rec, err := r.store.FindByIdentifier(ctx, l.kind, l.value)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", false, fmt.Errorf("identifier lookup: %w", err)
		}
		return rec, string(l.kind), false, nil
	}

	rec, flagged, err := r.confirm(ctx, work, flagNear)
	if err != nil {
		return nil, "", false, err
	}
	if rec != nil {
		return rec, "confirmation", false, nil
	}
	return nil, "", flagged, nil
}

// confirm scores fingerprint-blocked candidates with the confirmation
// pair: title sequence ratio and author-signature Jaccard. Both scores
// must clear their thresholds by the review margin for an automatic
// merge. The candidate list is ordered oldest-first, so the first clear
// pass is the earliest-created record.
func (r *Resolver) confirm(ctx context.Context, work Work, flagNear bool) (*types.LiteratureRecord, bool, error) {
	if work.Identifiers.Fingerprint == "" {
		return nil, false, nil
	}
	candidates, err := r.store.FindByFingerprint(ctx, work.Identifiers.Fingerprint)
	if err != nil {
		return nil, false, fmt.Errorf("fingerprint lookup: %w", err)
	}

	workTitle := match.NormalizeTitle(work.Title)
	workSigs := match.Signatures(work.Authors)

	var near *Candidate
	for i := range candidates {
		cand := Candidate{
			Record:      candidates[i],
			TitleScore:  match.Ratio(workTitle, match.NormalizeTitle(candidates[i].Title)),
			AuthorScore: match.Jaccard(workSigs, match.Signatures(candidates[i].Authors)),
		}

		clearTitle := cand.TitleScore >= r.cfg.TitleThreshold+r.cfg.ReviewMargin
		clearAuthor := cand.AuthorScore >= r.cfg.AuthorThreshold+r.cfg.ReviewMargin
		if clearTitle && clearAuthor {
			return &candidates[i], false, nil
		}

		nearTitle := cand.TitleScore >= r.cfg.TitleThreshold-r.cfg.ReviewMargin
		nearAuthor := cand.AuthorScore >= r.cfg.AuthorThreshold-r.cfg.ReviewMargin
		if nearTitle && nearAuthor && near == nil {
			c := cand
			near = &c
		}
	}

	if near == nil || !flagNear {
		return nil, false, nil
	}

	flag := types.ReviewFlag{
		ID:           uuid.NewString(),
		Title:        work.Title,
		CandidateLID: near.Record.LID,
		TitleScore:   near.TitleScore,
		AuthorScore:  near.AuthorScore,
	}
	if err := r.store.SaveReviewFlag(ctx, flag); err != nil {
		return nil, false, fmt.Errorf("saving review flag: %w", err)
	}
	r.log.Warn("near-threshold match flagged for review",
		zap.String("candidate_lid", near.Record.LID),
		zap.Float64("title_score", near.TitleScore),
		zap.Float64("author_score", near.AuthorScore))
	return nil, true, nil
}

// ResolveOrCreate matches the work, merging any newly seen identifiers
// into the matched record, or creates a new record with a fresh LID.
// Creation uses insert-then-verify: if a concurrent ingestion claimed
// one of the work's identifiers first, the insert fails on the unique
// constraint and the existing record is returned instead.
func (r *Resolver) ResolveOrCreate(ctx context.Context, work Work) (*Result, error) {
	existing, matchedBy, flagged, err := r.match(ctx, work, true)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		merged, err := r.mergeIdentifiers(ctx, existing, work.Identifiers)
		if err != nil {
			return nil, err
		}
		return &Result{Record: merged, MatchedBy: matchedBy}, nil
	}

	newLID, err := lid.Generate(ctx, r.store, work.Title, work.Authors, work.Year, r.lidCfg)
	if err != nil {
		return nil, fmt.Errorf("generating lid: %w", err)
	}

	rec := types.LiteratureRecord{
		LID:         newLID,
		Identifiers: work.Identifiers,
		Title:       work.Title,
		Authors:     work.Authors,
		Year:        work.Year,
		Venue:       work.Venue,
		CreatedAt:   time.Now().UTC(),
	}

	err = r.store.InsertRecord(ctx, rec)
	if err == nil {
		r.log.Info("created record",
			zap.String("lid", newLID),
			zap.String("title", work.Title))
		return &Result{Record: &rec, Created: true, Flagged: flagged}, nil
	}

	var conflict *store.IdentifierConflictError
	if !errors.As(err, &conflict) {
		return nil, fmt.Errorf("inserting record: %w", err)
	}

	// Lost an insert race on a unique identifier; the winner holds the
	// record now.
	winner, ferr := r.store.FindByLID(ctx, conflict.LID)
	if ferr != nil {
		return nil, fmt.Errorf("reading conflict winner: %w", ferr)
	}
	r.log.Debug("insert race lost, adopting existing record",
		zap.String("lid", winner.LID),
		zap.String("conflict_kind", conflict.Kind))
	merged, err := r.mergeIdentifiers(ctx, winner, work.Identifiers)
	if err != nil {
		return nil, err
	}
	return &Result{Record: merged, MatchedBy: conflict.Kind}, nil
}

// mergeIdentifiers adds any identifiers the matched record lacks. A
// cross-record conflict (the new identifier already belongs to a third
// record) is logged and skipped rather than failed: identity was
// already established on another axis.
func (r *Resolver) mergeIdentifiers(ctx context.Context, rec *types.LiteratureRecord, ids types.IdentifierSet) (*types.LiteratureRecord, error) {
	merged := *rec
	changed := false
	if merged.Identifiers.DOI == "" && ids.DOI != "" {
		merged.Identifiers.DOI = ids.DOI
		changed = true
	}
	if merged.Identifiers.ArxivID == "" && ids.ArxivID != "" {
		merged.Identifiers.ArxivID = ids.ArxivID
		changed = true
	}
	if merged.Identifiers.PMID == "" && ids.PMID != "" {
		merged.Identifiers.PMID = ids.PMID
		changed = true
	}
	for _, u := range ids.SourceURLs {
		if !containsString(merged.Identifiers.SourceURLs, u) {
			merged.Identifiers.SourceURLs = append(merged.Identifiers.SourceURLs, u)
			changed = true
		}
	}
	if !changed {
		return rec, nil
	}

	err := r.store.UpsertRecord(ctx, merged)
	if err == nil {
		return &merged, nil
	}
	var conflict *store.IdentifierConflictError
	if errors.As(err, &conflict) {
		r.log.Warn("identifier merge conflicts with another record, skipped",
			zap.String("lid", rec.LID),
			zap.String("conflict_kind", conflict.Kind),
			zap.String("holder", conflict.LID))
		return rec, nil
	}
	return nil, fmt.Errorf("merging identifiers: %w", err)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
