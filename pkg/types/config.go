// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchingConfig holds the fuzzy-match thresholds used by identity
// resolution. Thresholds are configuration, never constants at call
// sites.
type MatchingConfig struct {
	// TitleThreshold is the minimum title sequence-ratio for a
	// confirmation match (default 0.85).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold"`

	// AuthorThreshold is the minimum author-signature Jaccard overlap
	// for a confirmation match (default 0.70).
	AuthorThreshold float64 `json:"author_threshold" yaml:"author_threshold"`

	// ReviewMargin defines the band around each threshold inside which a
	// match is considered ambiguous: it is flagged for manual review and
	// never auto-merged (default 0.02).
	ReviewMargin float64 `json:"review_margin" yaml:"review_margin"`
}

// LIDConfig holds settings for local identifier generation.
type LIDConfig struct {
	// MaxAttempts bounds how many collision retries the generator makes
	// before the submission fails (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// StoreConfig holds settings for the SQLite-backed store.
type StoreConfig struct {
	// Path is the database file location (default "litgraph.db").
	Path string `json:"path" yaml:"path"`
}

// AccumulatorConfig holds settings for metadata accumulation.
type AccumulatorConfig struct {
	// ExpectedFields is the checklist the completeness score is computed
	// against. Empty uses the default checklist.
	ExpectedFields []string `json:"expected_fields,omitempty" yaml:"expected_fields,omitempty"`

	// SubmissionPriority is the priority assigned to fields taken from
	// the raw submission itself (default 10).
	SubmissionPriority int `json:"submission_priority" yaml:"submission_priority"`
}

// PipelineConfig holds settings for batch ingestion.
type PipelineConfig struct {
	// Workers is the number of submissions ingested in parallel
	// (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// EngineConfig groups all component configurations. Construct it once
// (DefaultEngineConfig, then override) and pass it in; no component
// reads global state.
type EngineConfig struct {
	Matching    MatchingConfig    `json:"matching" yaml:"matching"`
	LID         LIDConfig         `json:"lid" yaml:"lid"`
	Store       StoreConfig       `json:"store" yaml:"store"`
	Accumulator AccumulatorConfig `json:"accumulator" yaml:"accumulator"`
	Pipeline    PipelineConfig    `json:"pipeline" yaml:"pipeline"`
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Matching: MatchingConfig{
			TitleThreshold:  0.85,
			AuthorThreshold: 0.70,
			ReviewMargin:    0.02,
		},
		LID:   LIDConfig{MaxAttempts: 5},
		Store: StoreConfig{Path: "litgraph.db"},
		Accumulator: AccumulatorConfig{
			SubmissionPriority: 10,
		},
		Pipeline: PipelineConfig{Workers: 4},
	}
}
