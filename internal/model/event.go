package model

import "fmt"

// Stage identifies which pipeline stage produced an event or failure.
type Stage string

const (
	StageRouting   Stage = "routing"
	StageAuditing  Stage = "auditing"
	StageReporting Stage = "reporting"
)

// Outcome describes what happened to a single file.
type Outcome string

const (
	OutcomeMoved   Outcome = "moved"   // file relocated into its service directory
	OutcomeSkipped Outcome = "skipped" // destination already occupied, source untouched
	OutcomeAudited Outcome = "audited" // file scanned for the error marker
	OutcomeFailed  Outcome = "failed"  // per-file failure, stage continued
)

// Event is a single per-file notification emitted while the pipeline runs.
type Event struct {
	Stage   Stage   `json:"stage"`
	Path    string  `json:"path"`
	Service string  `json:"service,omitempty"` // set for routing events
	Outcome Outcome `json:"outcome"`
	Count   int     `json:"count,omitempty"` // marker matches, audit events only
	Error   string  `json:"error,omitempty"`
}

// Failure records a per-file error that did not abort its stage.
type Failure struct {
	Stage Stage
	Path  string
	Err   error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s: %v", f.Stage, f.Path, f.Err)
}
