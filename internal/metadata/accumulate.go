// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata accumulates record fields from multiple extraction
// sources under a priority model: a field value is only replaced by a
// source with strictly higher priority, so re-running a low-priority
// extractor never clobbers curated data.
package metadata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/internal/identifier"
	"github.com/pdiddy/litgraph/internal/match"
	"github.com/pdiddy/litgraph/internal/store"
	"github.com/pdiddy/litgraph/pkg/types"
)

// defaultExpectedFields is the completeness checklist when the
// configuration does not name one.
var defaultExpectedFields = []string{"title", "authors", "year", "venue", "doi", "abstract"}

// Accumulator applies extraction attempts to a record's field set.
type Accumulator struct {
	store    store.Repository
	expected []string
	log      *zap.Logger
}

// New builds an Accumulator. A nil logger disables logging.
func New(repo store.Repository, cfg types.AccumulatorConfig, log *zap.Logger) *Accumulator {
	if log == nil {
		log = zap.NewNop()
	}
	expected := cfg.ExpectedFields
	if len(expected) == 0 {
		expected = defaultExpectedFields
	}
	return &Accumulator{store: repo, expected: expected, log: log}
}

// Accumulate applies one extraction attempt to the record and returns
// how many fields were written. Empty values never overwrite anything,
// and an equal-priority source does not replace an existing value, so
// replays are idempotent. Fields are applied in name order to keep runs
// deterministic.
func (a *Accumulator) Accumulate(ctx context.Context, lid string, attempt types.ExtractionAttempt) (int, error) {
	if len(attempt.Fields) == 0 {
		return 0, nil
	}

	existing, err := a.store.Fields(ctx, lid)
	if err != nil {
		return 0, fmt.Errorf("reading fields of %s: %w", lid, err)
	}

	names := make([]string, 0, len(attempt.Fields))
	for name := range attempt.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	applied := 0
	for _, name := range names {
		value := strings.TrimSpace(attempt.Fields[name])
		if value == "" {
			continue
		}
		if cur, ok := existing[name]; ok && cur.Priority >= attempt.Priority {
			continue
		}
		fp := types.FieldProvenance{
			Value:    value,
			Source:   attempt.SourceName,
			Priority: attempt.Priority,
		}
		if err := a.store.PutField(ctx, lid, name, fp); err != nil {
			return applied, fmt.Errorf("writing field %s of %s: %w", name, lid, err)
		}
		applied++
	}

	if applied > 0 {
		a.log.Debug("accumulated metadata",
			zap.String("lid", lid),
			zap.String("source", attempt.SourceName),
			zap.Int("applied", applied))
	}
	return applied, nil
}

// Completeness returns the fraction of expected fields present on the
// record, together with the missing field names.
func (a *Accumulator) Completeness(ctx context.Context, lid string) (float64, []string, error) {
	fields, err := a.store.Fields(ctx, lid)
	if err != nil {
		return 0, nil, fmt.Errorf("reading fields of %s: %w", lid, err)
	}

	var missing []string
	for _, name := range a.expected {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	present := len(a.expected) - len(missing)
	return float64(present) / float64(len(a.expected)), missing, nil
}

// Refresh copies the winning field values back onto the record row so
// lookups see the accumulated state without joining the provenance
// table. Unknown or unparsable values leave the record untouched.
func (a *Accumulator) Refresh(ctx context.Context, lid string) error {
	rec, err := a.store.FindByLID(ctx, lid)
	if err != nil {
		return fmt.Errorf("reading record %s: %w", lid, err)
	}
	fields, err := a.store.Fields(ctx, lid)
	if err != nil {
		return fmt.Errorf("reading fields of %s: %w", lid, err)
	}

	changed := false
	if fp, ok := fields["title"]; ok && fp.Value != rec.Title {
		rec.Title = fp.Value
		// The fingerprint tracks the title: a stale one would let a later
		// submission of this work miss the duplicate-candidate block.
		rec.Identifiers.Fingerprint = match.Fingerprint(fp.Value)
		changed = true
	}
	if fp, ok := fields["venue"]; ok && fp.Value != rec.Venue {
		rec.Venue = fp.Value
		changed = true
	}
	if fp, ok := fields["year"]; ok {
		if year, perr := strconv.Atoi(strings.TrimSpace(fp.Value)); perr == nil && year != rec.Year {
			rec.Year = year
			changed = true
		}
	}
	if fp, ok := fields["authors"]; ok {
		authors := splitAuthors(fp.Value)
		if len(authors) > 0 && !equalStrings(authors, rec.Authors) {
			rec.Authors = authors
			changed = true
		}
	}
	if fp, ok := fields["doi"]; ok && rec.Identifiers.DOI == "" {
		if doi, derr := identifier.DOI(fp.Value); derr != nil {
			a.log.Warn("dropping accumulated doi",
				zap.String("lid", lid),
				zap.String("source", fp.Source),
				zap.Error(derr))
		} else {
			rec.Identifiers.DOI = doi
			changed = true
		}
	}

	if !changed {
		return nil
	}
	if err := a.store.UpsertRecord(ctx, *rec); err != nil {
		return fmt.Errorf("refreshing record %s: %w", lid, err)
	}
	return nil
}

// splitAuthors parses the canonical accumulated form "A; B; C".
func splitAuthors(value string) []string {
	var authors []string
	for _, part := range strings.Split(value, ";") {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
