// Package cmake drives the external build tool that runs the native API
// documentation extraction target.
package cmake

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"

	"github.com/timemory/doxsite/internal/config"
)

// ErrBinaryNotFound indicates the cmake binary is not on PATH.
var ErrBinaryNotFound = fmt.Errorf("cmake binary not found")

// ErrExecutionFailed indicates a cmake invocation exited non-zero.
var ErrExecutionFailed = fmt.Errorf("cmake execution failed")

// Driver abstracts how the documentation-extraction build is performed. This
// allows swapping the external cmake binary (BinaryDriver) with alternative
// strategies (no-op for tests, a fake recording invocations) without changing
// stage orchestration.
type Driver interface {
	// Configure runs the build-configuration step inside buildDir against sourceDir.
	Configure(ctx context.Context, buildDir, sourceDir string) error
	// Build runs the named build target inside buildDir.
	Build(ctx context.Context, buildDir, target string) error
}

// BinaryDriver invokes the `cmake` binary present on PATH.
type BinaryDriver struct {
	Generator string
	Defines   map[string]string
}

// NewBinaryDriver creates a driver from the cmake configuration section.
func NewBinaryDriver(cfg config.CMakeConfig) *BinaryDriver {
	return &BinaryDriver{Generator: cfg.Generator, Defines: cfg.Defines}
}

// ConfigureArgs returns the argument list for the configure invocation.
// Feature toggles are emitted in sorted order so invocations are reproducible.
func (d *BinaryDriver) ConfigureArgs(sourceDir string) []string {
	args := make([]string, 0, len(d.Defines)+3)
	if d.Generator != "" {
		args = append(args, "-G", d.Generator)
	}
	keys := make([]string, 0, len(d.Defines))
	for k := range d.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, d.Defines[k]))
	}
	return append(args, sourceDir)
}

func (d *BinaryDriver) Configure(ctx context.Context, buildDir, sourceDir string) error {
	return d.run(ctx, buildDir, d.ConfigureArgs(sourceDir))
}

func (d *BinaryDriver) Build(ctx context.Context, buildDir, target string) error {
	return d.run(ctx, buildDir, []string{"--build", buildDir, "--target", target})
}

func (d *BinaryDriver) run(ctx context.Context, buildDir string, args []string) error {
	if _, err := exec.LookPath("cmake"); err != nil {
		return fmt.Errorf("%w: %w", ErrBinaryNotFound, err)
	}

	if stat, err := os.Stat(buildDir); err != nil {
		return fmt.Errorf("scratch directory not found: %w", err)
	} else if !stat.IsDir() {
		return fmt.Errorf("scratch path is not a directory: %s", buildDir)
	}

	cmd := exec.CommandContext(ctx, "cmake", args...)
	cmd.Dir = buildDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking cmake", "dir", buildDir, "args", args)

	err := cmd.Run()

	outStr := stdout.String()
	errStr := stderr.String()
	if outStr != "" {
		slog.Debug("cmake stdout", "output", outStr)
	}
	if errStr != "" {
		slog.Warn("cmake stderr", "error_output", errStr)
	}

	if err != nil {
		// cmake writes diagnostics to either stream depending on the failure.
		output := errStr
		if output == "" {
			output = outStr
		}
		if output != "" {
			return fmt.Errorf("%w: %w: %s", ErrExecutionFailed, err, output)
		}
		return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	return nil
}

// NoopDriver performs no build; useful in tests or when generated output
// already exists in the scratch directory.
type NoopDriver struct{}

func (NoopDriver) Configure(_ context.Context, buildDir, _ string) error {
	slog.Debug("NoopDriver skipping configure", "dir", buildDir)
	return nil
}

func (NoopDriver) Build(_ context.Context, buildDir, target string) error {
	slog.Debug("NoopDriver skipping build", "dir", buildDir, "target", target)
	return nil
}
