package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/timemory/doxsite/internal/cmake"
	"github.com/timemory/doxsite/internal/config"
	"github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/gitinfo"
	"github.com/timemory/doxsite/internal/history"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/logfields"
	"github.com/timemory/doxsite/internal/metrics"
	"github.com/timemory/doxsite/internal/workspace"
)

// Build outcomes as recorded in history and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeWarning  = "warning"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// StageResult is the recorded outcome of one stage.
type StageResult struct {
	Stage    StageName
	Result   metrics.ResultLabel
	Duration time.Duration
	Err      error
}

// Report summarizes one pipeline run.
type Report struct {
	BuildID      string
	StartedAt    time.Time
	Duration     time.Duration
	Outcome      string
	Trigger      string
	Commit       string
	Branch       string
	Stages       []StageResult
	LinkFindings int
	Err          error
}

// HistoryRecord converts the report into a persistable build record.
func (r *Report) HistoryRecord() history.Build {
	b := history.Build{
		ID:        r.BuildID,
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Outcome:   r.Outcome,
		Trigger:   r.Trigger,
		Commit:    r.Commit,
		Branch:    r.Branch,
		Stages:    make(map[string]string, len(r.Stages)),
	}
	if r.Err != nil {
		b.Error = r.Err.Error()
	}
	for _, sr := range r.Stages {
		b.Stages[string(sr.Stage)] = string(sr.Result)
	}
	return b
}

// Runner executes registered stages in order against shared build state.
type Runner struct {
	registry *Registry
	recorder metrics.Recorder
}

// NewRunner creates a runner. A nil recorder disables metrics.
func NewRunner(registry *Registry, recorder metrics.Recorder) *Runner {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{registry: registry, recorder: recorder}
}

// Run executes the stages named in order. A stage whose dependency did not
// succeed is skipped and the build fails. Warnings degrade the outcome but
// do not stop execution.
func (r *Runner) Run(ctx context.Context, state *BuildState, order []StageName) *Report {
	report := &Report{
		BuildID:   state.ID,
		StartedAt: time.Now(),
		Outcome:   OutcomeSuccess,
	}
	if state.Git != nil {
		report.Commit = state.Git.Commit
		report.Branch = state.Git.Branch
	}

	succeeded := make(map[StageName]bool, len(order))

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			report.Outcome = OutcomeCanceled
			report.Err = err
			break
		}

		cmd, ok := r.registry.Get(name)
		if !ok {
			report.Outcome = OutcomeFailed
			report.Err = errors.InternalError("unknown stage: "+string(name), nil)
			break
		}

		blocked := false
		for _, dep := range cmd.Dependencies() {
			if !succeeded[dep] {
				blocked = true
				break
			}
		}
		if blocked {
			report.Stages = append(report.Stages, StageResult{Stage: name, Result: metrics.ResultFatal})
			report.Outcome = OutcomeFailed
			report.Err = errors.InternalError("stage "+string(name)+" blocked by unmet dependency", nil)
			break
		}

		slog.Debug("running stage",
			logfields.BuildID(state.ID),
			logfields.Stage(string(name)))

		start := time.Now()
		exec := cmd.Execute(ctx, state)
		elapsed := time.Since(start)

		result := metrics.ResultSuccess
		switch {
		case exec.Err != nil && exec.Warning:
			result = metrics.ResultWarning
		case stderrors.Is(exec.Err, context.Canceled) || stderrors.Is(exec.Err, context.DeadlineExceeded):
			result = metrics.ResultCanceled
		case exec.Err != nil:
			result = metrics.ResultFatal
		}

		r.recorder.ObserveStageDuration(string(name), elapsed)
		r.recorder.IncStageResult(string(name), result)
		report.Stages = append(report.Stages, StageResult{
			Stage:    name,
			Result:   result,
			Duration: elapsed,
			Err:      exec.Err,
		})

		switch result {
		case metrics.ResultSuccess:
			succeeded[name] = true
			slog.Debug("stage complete",
				logfields.Stage(string(name)),
				logfields.DurationMS(float64(elapsed.Milliseconds())))
		case metrics.ResultWarning:
			succeeded[name] = true
			if report.Outcome == OutcomeSuccess {
				report.Outcome = OutcomeWarning
			}
			slog.Warn("stage degraded",
				logfields.Stage(string(name)),
				logfields.Error(exec.Err))
		case metrics.ResultCanceled:
			report.Outcome = OutcomeCanceled
			report.Err = exec.Err
		default:
			report.Outcome = OutcomeFailed
			report.Err = errors.StageFailed(string(name), exec.Err)
			slog.Error("stage failed",
				logfields.Stage(string(name)),
				logfields.Error(exec.Err))
		}

		if report.Outcome == OutcomeFailed || report.Outcome == OutcomeCanceled {
			break
		}
	}

	report.Duration = time.Since(report.StartedAt)
	report.LinkFindings = len(state.LinkFindings)
	r.recorder.ObserveBuildDuration(report.Duration)
	r.recorder.IncBuildOutcome(report.Outcome)
	r.recorder.IncLinkFindings(report.LinkFindings)
	return report
}

// Options tune a single pipeline execution.
type Options struct {
	// Trigger records what started the build: manual, watch, schedule, or retry.
	Trigger string

	// Driver overrides the CMake driver. Nil selects the binary driver, or
	// the noop driver when SkipCMake is set.
	Driver cmake.Driver

	// SkipCMake replaces the CMake stage's driver with a no-op, for trees
	// where doxygen output already exists.
	SkipCMake bool

	// Recorder receives build and stage metrics. Nil disables metrics.
	Recorder metrics.Recorder
}

// Execute resolves the build environment from configuration and runs the
// full default pipeline once.
func Execute(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	if opts.Trigger == "" {
		opts.Trigger = "manual"
	}

	lay, err := layout.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	version, err := cfg.ReadVersion(lay.SourceRoot)
	if err != nil {
		return nil, err
	}

	driver := opts.Driver
	if driver == nil {
		if opts.SkipCMake {
			driver = cmake.NoopDriver{}
		} else {
			driver = cmake.NewBinaryDriver(cfg.CMake)
		}
	}

	state := &BuildState{
		ID:        uuid.NewString(),
		Config:    cfg,
		Layout:    lay,
		Version:   version,
		Workspace: workspace.NewManager(lay.BuildDir, cfg.CMake.KeepBuild),
		Driver:    driver,
	}

	if info, err := gitinfo.Describe(lay.SourceRoot); err == nil {
		state.Git = info
	} else if !stderrors.Is(err, gitinfo.ErrNotRepository) {
		slog.Debug("git metadata unavailable", logfields.Error(err))
	}

	registry, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}

	runner := NewRunner(registry, opts.Recorder)

	slog.Info("starting documentation build",
		logfields.BuildID(state.ID),
		slog.String("trigger", opts.Trigger),
		slog.String("version", version))

	report := runner.Run(ctx, state, DefaultOrder)
	report.Trigger = opts.Trigger

	if cerr := state.Workspace.Cleanup(); cerr != nil {
		slog.Warn("workspace cleanup failed", logfields.Error(cerr))
	}

	slog.Info("documentation build finished",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(report.Outcome),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))

	return report, nil
}
