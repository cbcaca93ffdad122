// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExecutionMode is the requirement gate's verdict for a pipeline stage.
type ExecutionMode string

const (
	// ModeNormal runs the stage with full capability.
	ModeNormal ExecutionMode = "normal"

	// ModeDegraded runs the stage with reduced capability; at least one
	// preferred input is missing.
	ModeDegraded ExecutionMode = "degraded"

	// ModeSkip does not run the stage; a required input is missing. The
	// record still proceeds through the rest of the pipeline.
	ModeSkip ExecutionMode = "skip"
)

// ExecutionDecision reports whether a stage can run and what is missing.
type ExecutionDecision struct {
	Stage            string        `json:"stage" yaml:"stage"`
	Mode             ExecutionMode `json:"mode" yaml:"mode"`
	MissingRequired  []string      `json:"missing_required,omitempty" yaml:"missing_required,omitempty"`
	MissingPreferred []string      `json:"missing_preferred,omitempty" yaml:"missing_preferred,omitempty"`
}

// ShouldRun reports whether the stage executes at all.
func (d ExecutionDecision) ShouldRun() bool {
	return d.Mode != ModeSkip
}
