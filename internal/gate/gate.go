// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gate decides, per pipeline stage, whether a submission
// carries enough input for the stage to run. Requirements are
// declarative: each stage lists named items at a required, preferred,
// or optional level, and the verdict is normal, degraded (preferred
// input missing), or skip (required input missing). Optional items
// never change the verdict. A skip never fails the submission; the
// record continues through the remaining stages.
package gate

import (
	"go.uber.org/zap"

	"github.com/pdiddy/litgraph/pkg/types"
)

// Level grades how much a stage needs an input.
type Level int

const (
	// Required inputs gate execution: missing one skips the stage.
	Required Level = iota

	// Preferred inputs only degrade execution when missing.
	Preferred

	// Optional inputs never affect the verdict; they are declared so a
	// stage's full input surface is visible in one place.
	Optional
)

// Inputs is the snapshot of what a submission carries, as seen by the
// gate. It is derived once per submission and checked per stage.
type Inputs struct {
	Title         string
	Authors       []string
	Year          int
	DOI           string
	ArxivID       string
	PMID          string
	Abstract      string
	RawReferences []types.Reference
}

// Check reports whether an input item is satisfied.
type Check func(Inputs) bool

// AnyOf satisfies when at least one alternative does.
func AnyOf(checks ...Check) Check {
	return func(in Inputs) bool {
		for _, c := range checks {
			if c(in) {
				return true
			}
		}
		return false
	}
}

// Common input checks.
func HasTitle(in Inputs) bool   { return in.Title != "" }
func HasAuthors(in Inputs) bool { return len(in.Authors) > 0 }
func HasYear(in Inputs) bool    { return in.Year != 0 }
func HasDOI(in Inputs) bool     { return in.DOI != "" }
func HasStrongIdentifier(in Inputs) bool {
	return in.DOI != "" || in.ArxivID != "" || in.PMID != ""
}
func HasAbstract(in Inputs) bool   { return in.Abstract != "" }
func HasReferences(in Inputs) bool { return len(in.RawReferences) > 0 }

// Item is one named input requirement of a stage.
type Item struct {
	Name      string
	Level     Level
	Satisfied Check
}

// Stage is a named pipeline stage with its input requirements.
type Stage struct {
	Name  string
	Items []Item
}

// Gate evaluates stage requirements against submission inputs.
type Gate struct {
	stages map[string]Stage
	log    *zap.Logger
}

// New builds a Gate over the given stages. A nil logger disables
// logging.
func New(stages []Stage, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		byName[s.Name] = s
	}
	return &Gate{stages: byName, log: log}
}

// Check evaluates one stage. A stage the gate has no rules for runs
// normally.
func (g *Gate) Check(stage string, in Inputs) types.ExecutionDecision {
	decision := types.ExecutionDecision{Stage: stage, Mode: types.ModeNormal}

	s, ok := g.stages[stage]
	if !ok {
		g.log.Debug("no gate rules for stage", zap.String("stage", stage))
		return decision
	}

	for _, item := range s.Items {
		if item.Satisfied(in) {
			continue
		}
		switch item.Level {
		case Required:
			decision.MissingRequired = append(decision.MissingRequired, item.Name)
		case Preferred:
			decision.MissingPreferred = append(decision.MissingPreferred, item.Name)
		}
	}

	switch {
	case len(decision.MissingRequired) > 0:
		decision.Mode = types.ModeSkip
	case len(decision.MissingPreferred) > 0:
		decision.Mode = types.ModeDegraded
	}

	if decision.Mode != types.ModeNormal {
		g.log.Info("stage gated",
			zap.String("stage", stage),
			zap.String("mode", string(decision.Mode)),
			zap.Strings("missing_required", decision.MissingRequired),
			zap.Strings("missing_preferred", decision.MissingPreferred))
	}
	return decision
}

// Stage names used by the ingestion pipeline.
const (
	StageIdentity      = "identity-resolution"
	StageMetadata      = "metadata-accumulation"
	StageCitationGraph = "citation-graph"
)

// DefaultStages returns the rules for the standard ingestion pipeline:
// identity resolution needs a title or a strong identifier, metadata
// accumulation needs a title, and the citation-graph stage needs raw
// references to work on.
func DefaultStages() []Stage {
	return []Stage{
		{
			Name: StageIdentity,
			Items: []Item{
				{Name: "title-or-identifier", Level: Required, Satisfied: AnyOf(HasTitle, HasStrongIdentifier)},
				{Name: "authors", Level: Preferred, Satisfied: HasAuthors},
				{Name: "year", Level: Preferred, Satisfied: HasYear},
			},
		},
		{
			Name: StageMetadata,
			Items: []Item{
				{Name: "title", Level: Required, Satisfied: HasTitle},
				{Name: "abstract", Level: Preferred, Satisfied: HasAbstract},
				{Name: "doi", Level: Optional, Satisfied: HasDOI},
			},
		},
		{
			Name: StageCitationGraph,
			Items: []Item{
				{Name: "references", Level: Required, Satisfied: HasReferences},
				{Name: "year", Level: Preferred, Satisfied: HasYear},
			},
		},
	}
}
