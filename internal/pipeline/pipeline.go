// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the engine together and runs submissions
// through it: identifier normalization, identity resolution, metadata
// accumulation, and citation-graph maintenance, each behind its
// requirement gate. Batch ingestion fans out over a bounded worker
// pool; one failed submission never fails the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litgraph/internal/gate"
	"github.com/pdiddy/litgraph/internal/graph"
	"github.com/pdiddy/litgraph/internal/identifier"
	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/metadata"
	"github.com/pdiddy/litgraph/internal/resolve"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

// ErrInsufficientInput reports a submission that carries neither a
// title nor any strong identifier: there is nothing to resolve an
// identity from.
var ErrInsufficientInput = errors.New("submission has no title and no identifier")

// submissionSource names the extraction attempt synthesized from the
// submission's own fields.
const submissionSource = "submission"

// Engine is the assembled ingestion engine.
type Engine struct {
	store       store.Repository
	resolver    *resolve.Resolver
	accumulator *metadata.Accumulator
	gate        *gate.Gate
	graph       *graph.Manager
	cfg         types.EngineConfig
	log         *zap.Logger
}

// New opens the store at cfg.Store.Path and assembles the engine
// around it. A nil logger disables logging.
func New(cfg types.EngineConfig, log *zap.Logger) (*Engine, error) {
	repo, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return NewWithStore(repo, cfg, log), nil
}

// NewWithStore assembles the engine around an existing repository.
func NewWithStore(repo store.Repository, cfg types.EngineConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	resolver := resolve.New(repo, cfg.Matching, cfg.LID, log)
	return &Engine{
		store:       repo,
		resolver:    resolver,
		accumulator: metadata.New(repo, cfg.Accumulator, log),
		gate:        gate.New(gate.DefaultStages(), log),
		graph:       graph.NewManager(repo, resolver, cfg.Matching, log),
		cfg:         cfg,
		log:         log,
	}
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store exposes the repository for read-side callers (stats, review).
func (e *Engine) Store() store.Repository {
	return e.store
}

// IngestResult reports what ingesting one submission did.
type IngestResult struct {
	LID       string                    `json:"lid"`
	Created   bool                      `json:"created"`
	MatchedBy string                    `json:"matched_by,omitempty"`
	Flagged   bool                      `json:"flagged,omitempty"`
	Decisions []types.ExecutionDecision `json:"decisions,omitempty"`
	Refs      *graph.ReferenceSummary   `json:"refs,omitempty"`
	Upgraded  int                       `json:"upgraded,omitempty"`
}

// Ingest runs one submission through the full pipeline. Metadata is
// accumulated before references are processed, so a submission citing
// itself still resolves against up-to-date fields.
func (e *Engine) Ingest(ctx context.Context, sub types.Submission) (*IngestResult, error) {
	ids := identifier.Normalize(sub.Identifiers, e.log)
	if sub.Title != "" {
		ids.Fingerprint = match.Fingerprint(sub.Title)
	}
	inputs := e.inputsFor(sub, ids)
	result := &IngestResult{}

	identity := e.gate.Check(gate.StageIdentity, inputs)
	result.Decisions = append(result.Decisions, identity)
	if !identity.ShouldRun() {
		return result, ErrInsufficientInput
	}

	resolved, err := e.resolver.ResolveOrCreate(ctx, resolve.Work{
		Identifiers: ids,
		Title:       sub.Title,
		Authors:     sub.Authors,
		Year:        sub.Year,
		Venue:       sub.Venue,
	})
	if err != nil {
		return result, err
	}
	result.LID = resolved.Record.LID
	result.Created = resolved.Created
	result.MatchedBy = resolved.MatchedBy
	result.Flagged = resolved.Flagged

	if resolved.Created {
		upgraded, err := e.graph.OnNewRecord(ctx, resolved.Record)
		if err != nil {
			return result, err
		}
		result.Upgraded = upgraded
	}

	meta := e.gate.Check(gate.StageMetadata, inputs)
	result.Decisions = append(result.Decisions, meta)
	if meta.ShouldRun() {
		if err := e.accumulate(ctx, resolved.Record.LID, sub); err != nil {
			return result, err
		}
	}

	graphStage := e.gate.Check(gate.StageCitationGraph, inputs)
	result.Decisions = append(result.Decisions, graphStage)
	if graphStage.ShouldRun() {
		summary, err := e.graph.ProcessReferences(ctx, resolved.Record.LID, e.allReferences(sub))
		if err != nil {
			return result, err
		}
		result.Refs = summary
	}

	return result, nil
}

// accumulate applies the submission's own fields, then every
// extraction attempt, and refreshes the record row with the winners.
func (e *Engine) accumulate(ctx context.Context, lid string, sub types.Submission) error {
	if _, err := e.accumulator.Accumulate(ctx, lid, e.submissionAttempt(sub)); err != nil {
		return err
	}
	for _, attempt := range sub.Attempts {
		if _, err := e.accumulator.Accumulate(ctx, lid, attempt); err != nil {
			return err
		}
	}
	return e.accumulator.Refresh(ctx, lid)
}

// submissionAttempt exposes the submission's own fields as an
// extraction attempt at the configured submission priority.
func (e *Engine) submissionAttempt(sub types.Submission) types.ExtractionAttempt {
	fields := map[string]string{
		"title": sub.Title,
		"venue": sub.Venue,
	}
	if len(sub.Authors) > 0 {
		fields["authors"] = joinAuthors(sub.Authors)
	}
	if sub.Year != 0 {
		fields["year"] = fmt.Sprintf("%d", sub.Year)
	}
	return types.ExtractionAttempt{
		SourceName: submissionSource,
		Priority:   e.cfg.Accumulator.SubmissionPriority,
		Fields:     fields,
	}
}

func (e *Engine) inputsFor(sub types.Submission, ids types.IdentifierSet) gate.Inputs {
	in := gate.Inputs{
		Title:         sub.Title,
		Authors:       sub.Authors,
		Year:          sub.Year,
		DOI:           ids.DOI,
		ArxivID:       ids.ArxivID,
		PMID:          ids.PMID,
		RawReferences: e.allReferences(sub),
	}
	for _, attempt := range sub.Attempts {
		if abstract, ok := attempt.Fields["abstract"]; ok && abstract != "" {
			in.Abstract = abstract
			break
		}
	}
	return in
}

// allReferences merges the submission's direct references with those
// carried by extraction attempts.
func (e *Engine) allReferences(sub types.Submission) []types.Reference {
	refs := append([]types.Reference(nil), sub.RawReferences...)
	for _, attempt := range sub.Attempts {
		refs = append(refs, attempt.RawReferences...)
	}
	return refs
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, "; ")
}

// BatchSummary tallies one batch ingestion run.
type BatchSummary struct {
	Created int `json:"created"`
	Matched int `json:"matched"`
	Flagged int `json:"flagged"`
	Failed  int `json:"failed"`
}

// Total returns the number of submissions processed.
func (s BatchSummary) Total() int {
	return s.Created + s.Matched + s.Failed
}

// HasFailures reports whether any submission failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// IngestBatch runs submissions through the pipeline on a bounded
// worker pool. Individual failures are tallied, not propagated; only
// context cancellation aborts the batch.
func (e *Engine) IngestBatch(ctx context.Context, subs []types.Submission) (*BatchSummary, error) {
	workers := e.cfg.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	summary := &BatchSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range subs {
		sub := subs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Ingest(gctx, sub)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				e.log.Warn("submission failed",
					zap.String("title", sub.Title),
					zap.Error(err))
			case res.Created:
				summary.Created++
			default:
				summary.Matched++
			}
			if err == nil && res.Flagged {
				summary.Flagged++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// SweepOrphans removes placeholder nodes that lost their last citer.
func (e *Engine) SweepOrphans(ctx context.Context) (*graph.SweepSummary, error) {
	return e.graph.SweepOrphans(ctx)
}

// Completeness reports a record's metadata completeness score and the
// missing expected fields.
func (e *Engine) Completeness(ctx context.Context, lid string) (float64, []string, error) {
	return e.accumulator.Completeness(ctx, lid)
}

// CheckRequirements evaluates one stage's gate against a submission.
func (e *Engine) CheckRequirements(stage string, sub types.Submission) types.ExecutionDecision {
	ids := identifier.Normalize(sub.Identifiers, e.log)
	return e.gate.Check(stage, e.inputsFor(sub, ids))
}
