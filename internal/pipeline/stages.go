package pipeline

import (
	"context"
	"log/slog"

	"github.com/timemory/doxsite/internal/doxygen"
	"github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/linkcheck"
	"github.com/timemory/doxsite/internal/logfields"
	"github.com/timemory/doxsite/internal/readmes"
	"github.com/timemory/doxsite/internal/sphinx"
)

// PrepareWorkspaceCommand ensures the CMake build directory exists.
type PrepareWorkspaceCommand struct {
	BaseCommand
}

func NewPrepareWorkspaceCommand() *PrepareWorkspaceCommand {
	return &PrepareWorkspaceCommand{
		BaseCommand: NewBaseCommand(StagePrepareWorkspace, "Create or reuse the CMake build directory"),
	}
}

func (c *PrepareWorkspaceCommand) Execute(_ context.Context, state *BuildState) StageExecution {
	if err := state.Workspace.Create(); err != nil {
		return ExecutionFailure(err)
	}
	slog.Debug("workspace ready", logfields.Path(state.Layout.BuildDir))
	return ExecutionSuccess()
}

// RunCMakeCommand configures the project and builds the doc target, which
// runs doxygen as a side effect.
type RunCMakeCommand struct {
	BaseCommand
}

func NewRunCMakeCommand() *RunCMakeCommand {
	return &RunCMakeCommand{
		BaseCommand: NewBaseCommand(StageRunCMake, "Configure with CMake and build the doc target", StagePrepareWorkspace),
	}
}

func (c *RunCMakeCommand) Execute(ctx context.Context, state *BuildState) StageExecution {
	if err := state.Driver.Configure(ctx, state.Layout.BuildDir, state.Layout.SourceRoot); err != nil {
		return ExecutionFailure(errors.CMakeConfigureError(state.Layout.BuildDir, err))
	}
	if err := state.Driver.Build(ctx, state.Layout.BuildDir, state.Config.CMake.Target); err != nil {
		return ExecutionFailure(errors.CMakeBuildError(state.Config.CMake.Target, err))
	}
	return ExecutionSuccess()
}

// SyncDoxygenCommand moves doxygen output into the sphinx tree.
type SyncDoxygenCommand struct {
	BaseCommand
}

func NewSyncDoxygenCommand() *SyncDoxygenCommand {
	return &SyncDoxygenCommand{
		BaseCommand: NewBaseCommand(StageSyncDoxygen, "Stage doxygen HTML and XML output into the docs tree", StageRunCMake),
	}
}

func (c *SyncDoxygenCommand) Execute(_ context.Context, state *BuildState) StageExecution {
	syncer := doxygen.NewSyncer(state.Layout)
	if err := syncer.Sync(); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// SpreadReadmesCommand fans tool READMEs out into the docs tree.
type SpreadReadmesCommand struct {
	BaseCommand
}

func NewSpreadReadmesCommand() *SpreadReadmesCommand {
	return &SpreadReadmesCommand{
		BaseCommand: NewBaseCommand(StageSpreadReadmes, "Copy tool READMEs and generate the tools index"),
	}
}

func (c *SpreadReadmesCommand) Execute(_ context.Context, state *BuildState) StageExecution {
	spreader := readmes.NewSpreader(state.Layout,
		state.Config.Source.Tools,
		state.Config.Source.PythonReadme != "",
		state.Config.Sphinx.Markdown.EvalRSTEnabled())
	if err := spreader.Spread(); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// WriteConfCommand renders the sphinx configuration.
type WriteConfCommand struct {
	BaseCommand
}

func NewWriteConfCommand() *WriteConfCommand {
	return &WriteConfCommand{
		BaseCommand: NewBaseCommand(StageWriteConf, "Render conf.py for sphinx"),
	}
}

func (c *WriteConfCommand) Execute(_ context.Context, state *BuildState) StageExecution {
	site := sphinx.NewSiteConfig(state.Config, state.Version)
	if err := sphinx.WriteConf(site, state.Layout.DocsDir); err != nil {
		return ExecutionFailure(err)
	}
	return ExecutionSuccess()
}

// CheckLinksCommand scans the staged doxygen HTML and the docs-tree Markdown
// for broken local references. Findings degrade the build to a warning,
// never a failure.
type CheckLinksCommand struct {
	BaseCommand
}

func NewCheckLinksCommand() *CheckLinksCommand {
	return &CheckLinksCommand{
		BaseCommand: NewBaseCommand(StageCheckLinks, "Check staged HTML and Markdown for broken local links",
			StageSyncDoxygen, StageSpreadReadmes),
	}
}

func (c *CheckLinksCommand) Execute(_ context.Context, state *BuildState) StageExecution {
	findings, err := linkcheck.CheckTree(state.Layout.HTMLDest())
	if err != nil {
		return ExecutionWarning(err)
	}
	mdFindings, err := linkcheck.CheckMarkdownTree(state.Layout.DocsDir,
		state.Config.Sphinx.Markdown.AutoTocTreeSection)
	if err != nil {
		return ExecutionWarning(err)
	}
	findings = append(findings, mdFindings...)
	state.LinkFindings = findings
	if len(findings) > 0 {
		slog.Warn("broken local links found",
			slog.Int("count", len(findings)),
			logfields.Path(state.Layout.DocsDir))
		return ExecutionWarning(errors.New(errors.CategoryBuild, errors.SeverityWarning, "broken local links in generated docs"))
	}
	return ExecutionSuccess()
}

// DefaultRegistry builds a registry with the standard stage set.
func DefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	commands := []StageCommand{
		NewPrepareWorkspaceCommand(),
		NewRunCMakeCommand(),
		NewSyncDoxygenCommand(),
		NewSpreadReadmesCommand(),
		NewWriteConfCommand(),
		NewCheckLinksCommand(),
	}
	for _, cmd := range commands {
		if err := reg.Register(cmd); err != nil {
			return nil, err
		}
	}
	if err := reg.ValidateDependencies(); err != nil {
		return nil, err
	}
	return reg, nil
}
