// Package pipeline orchestrates the documentation build as a sequence of
// named stages executing against shared build state.
package pipeline

import (
	"github.com/timemory/doxsite/internal/cmake"
	"github.com/timemory/doxsite/internal/config"
	"github.com/timemory/doxsite/internal/gitinfo"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/linkcheck"
	"github.com/timemory/doxsite/internal/workspace"
)

// StageName identifies one build stage.
type StageName string

const (
	StagePrepareWorkspace StageName = "prepare-workspace"
	StageRunCMake         StageName = "run-cmake"
	StageSyncDoxygen      StageName = "sync-doxygen"
	StageSpreadReadmes    StageName = "spread-readmes"
	StageWriteConf        StageName = "write-conf"
	StageCheckLinks       StageName = "check-links"
)

// DefaultOrder is the canonical stage execution order.
var DefaultOrder = []StageName{
	StagePrepareWorkspace,
	StageRunCMake,
	StageSyncDoxygen,
	StageSpreadReadmes,
	StageWriteConf,
	StageCheckLinks,
}

// BuildState carries everything stages need and everything they produce.
type BuildState struct {
	ID      string
	Config  *config.Config
	Layout  *layout.Layout
	Version string
	Git     *gitinfo.Info // nil when the source tree is not a repository

	Workspace *workspace.Manager
	Driver    cmake.Driver

	LinkFindings []linkcheck.Finding
}

// StageExecution is the result of running one stage.
type StageExecution struct {
	Err     error
	Warning bool // failure is non-fatal, pipeline continues
}

// ExecutionSuccess reports a cleanly completed stage.
func ExecutionSuccess() StageExecution {
	return StageExecution{}
}

// ExecutionFailure reports a fatal stage failure.
func ExecutionFailure(err error) StageExecution {
	return StageExecution{Err: err}
}

// ExecutionWarning reports a non-fatal degradation.
func ExecutionWarning(err error) StageExecution {
	return StageExecution{Err: err, Warning: true}
}
