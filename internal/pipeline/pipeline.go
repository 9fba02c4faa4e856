package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arengifoc/logsort/internal/audit"
	"github.com/arengifoc/logsort/internal/classify"
	"github.com/arengifoc/logsort/internal/model"
	"github.com/arengifoc/logsort/internal/report"
	"github.com/arengifoc/logsort/internal/router"
)

// State tracks pipeline progress.
type State string

const (
	StateIdle            State = "idle"
	StateRouting         State = "routing"
	StateAuditing        State = "auditing"
	StateReporting       State = "reporting"
	StateDone            State = "done"
	StatePartiallyFailed State = "partially_failed"
)

// ErrAborted is returned when a Confirmer declines an overwrite or a
// directory creation.
var ErrAborted = errors.New("aborted")

// PreconditionError wraps failures that halt the pipeline before (or
// instead of) doing any per-file work.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string { return e.Err.Error() }
func (e *PreconditionError) Unwrap() error { return e.Err }

// Confirmer answers yes/no questions on behalf of the operator. The pipeline
// never performs interactive I/O itself; the CLI injects an implementation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Config is the explicit configuration for one pipeline run. No process-wide
// state: callers construct one per run.
type Config struct {
	SourceDir  string
	DestRoot   string
	ReportPath string

	// Pattern classifies file names; nil means classify.Default().
	Pattern *classify.Pattern
	// Marker is the audit pattern; nil means audit.DefaultMarker.
	Marker *regexp.Regexp

	// Confirm gates report overwrite and destination-root creation.
	// Nil answers yes to everything.
	Confirm Confirmer
	// Publish, when non-nil, receives one event per processed file.
	Publish func(model.Event)
}

// Result summarizes one pipeline run. Per-file failures are accumulated
// here; they never abort a stage.
type Result struct {
	State    State           `json:"state"`
	Moved    int             `json:"moved"`
	Skipped  int             `json:"skipped"`
	Audited  int             `json:"audited"`
	Failures []model.Failure `json:"-"`

	ReportPath string `json:"report_path"`
}

// Failed reports how many per-file failures the run accumulated.
func (r *Result) Failed() int { return len(r.Failures) }

// Run executes the full pipeline: route every log file in cfg.SourceDir into
// per-service directories under cfg.DestRoot, audit the destination tree,
// and write the report. The returned error is non-nil only for precondition
// failures, a declined confirmation, or a failed report write; per-file
// failures land in Result.Failures and leave the error nil.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Pattern == nil {
		cfg.Pattern = classify.Default()
	}
	if cfg.Marker == nil {
		cfg.Marker = audit.DefaultMarker
	}

	res := &Result{State: StateIdle, ReportPath: cfg.ReportPath}

	logs, err := checkPreconditions(cfg)
	if err != nil {
		return res, err
	}

	res.State = StateRouting
	routeAll(cfg, logs, res)

	res.State = StateAuditing
	lines := auditTree(ctx, cfg, res)

	res.State = StateReporting
	if err := report.Write(lines, cfg.ReportPath); err != nil {
		publish(cfg, model.Event{
			Stage:   model.StageReporting,
			Path:    cfg.ReportPath,
			Outcome: model.OutcomeFailed,
			Error:   err.Error(),
		})
		return res, err
	}

	if len(res.Failures) > 0 {
		res.State = StatePartiallyFailed
	} else {
		res.State = StateDone
	}
	return res, nil
}

// checkPreconditions validates the source directory, prepares the
// destination root, and gates the report overwrite. Any failure here is
// fatal and happens before per-file work.
func checkPreconditions(cfg Config) ([]string, error) {
	info, err := os.Stat(cfg.SourceDir)
	if err != nil {
		return nil, &PreconditionError{fmt.Errorf("cannot access %q: %w", cfg.SourceDir, err)}
	}
	if !info.IsDir() {
		return nil, &PreconditionError{fmt.Errorf("%q is not a directory", cfg.SourceDir)}
	}

	logs, err := sourceLogs(cfg.SourceDir)
	if err != nil {
		return nil, &PreconditionError{fmt.Errorf("cannot list %q: %w", cfg.SourceDir, err)}
	}
	if len(logs) == 0 {
		return nil, &PreconditionError{fmt.Errorf("%s: no log files found", cfg.SourceDir)}
	}

	if _, err := os.Stat(cfg.ReportPath); err == nil {
		if !confirm(cfg, fmt.Sprintf("Report file %q already exists. Overwrite?", cfg.ReportPath)) {
			return nil, ErrAborted
		}
	}

	if _, err := os.Stat(cfg.DestRoot); err != nil {
		if !confirm(cfg, fmt.Sprintf("Create destination directory %q?", cfg.DestRoot)) {
			return nil, ErrAborted
		}
		if err := os.MkdirAll(cfg.DestRoot, 0o755); err != nil {
			return nil, &PreconditionError{fmt.Errorf("cannot create %q: %w", cfg.DestRoot, err)}
		}
	}

	return logs, nil
}

// sourceLogs lists *.log files directly under dir. The source level is
// deliberately non-recursive; only the destination tree is walked.
func sourceLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		logs = append(logs, filepath.Join(dir, e.Name()))
	}
	return logs, nil
}

// routeAll routes every source log, accumulating per-file failures.
func routeAll(cfg Config, logs []string, res *Result) {
	r := router.New(cfg.Pattern, cfg.DestRoot)

	for _, path := range logs {
		svc, outcome, err := r.Route(path)
		ev := model.Event{Stage: model.StageRouting, Path: path, Service: svc}

		switch {
		case err != nil:
			res.Failures = append(res.Failures, model.Failure{Stage: model.StageRouting, Path: path, Err: err})
			ev.Outcome = model.OutcomeFailed
			ev.Error = err.Error()
		case outcome == router.Skipped:
			res.Skipped++
			ev.Outcome = model.OutcomeSkipped
		default:
			res.Moved++
			ev.Outcome = model.OutcomeMoved
		}
		publish(cfg, ev)
	}
}

// auditTree walks the destination tree and collects report lines, excluding
// files that failed to read.
func auditTree(ctx context.Context, cfg Config, res *Result) []report.Line {
	var lines []report.Line

	for ar := range audit.New(cfg.Marker).Scan(ctx, cfg.DestRoot) {
		ev := model.Event{Stage: model.StageAuditing, Path: ar.Path, Count: ar.Count}

		if ar.Err != nil {
			res.Failures = append(res.Failures, model.Failure{Stage: model.StageAuditing, Path: ar.Path, Err: ar.Err})
			ev.Outcome = model.OutcomeFailed
			ev.Error = ar.Err.Error()
		} else {
			res.Audited++
			lines = append(lines, report.Line{Name: ar.Name, Count: ar.Count})
			ev.Outcome = model.OutcomeAudited
		}
		publish(cfg, ev)
	}
	return lines
}

func confirm(cfg Config, prompt string) bool {
	if cfg.Confirm == nil {
		return true
	}
	return cfg.Confirm.Confirm(prompt)
}

func publish(cfg Config, ev model.Event) {
	if cfg.Publish != nil {
		cfg.Publish(ev)
	}
}
