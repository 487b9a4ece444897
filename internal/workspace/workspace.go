// Package workspace manages the scratch directory the build-system driver
// runs in.
package workspace

import (
	"log/slog"
	"os"

	"github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/logfields"
)

// Manager handles the scratch build directory lifecycle. In keep mode the
// directory survives Cleanup so later builds can reuse the configure cache;
// otherwise it is removed once the generated output has been staged.
type Manager struct {
	dir  string
	keep bool
}

// NewManager creates a workspace manager for the given scratch directory.
func NewManager(dir string, keep bool) *Manager {
	return &Manager{dir: dir, keep: keep}
}

// Create ensures the scratch directory exists. An already existing directory
// is reused as-is.
func (m *Manager) Create() error {
	if m.dir == "" {
		return errors.ValidationFailed("build_dir", "scratch directory not set")
	}
	if _, err := os.Stat(m.dir); err == nil {
		slog.Info("Reusing existing scratch directory", logfields.Path(m.dir))
		return nil
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return errors.WorkspaceError("create", err)
	}
	slog.Info("Created scratch directory", logfields.Path(m.dir))
	return nil
}

// GetPath returns the path to the scratch directory.
func (m *Manager) GetPath() string {
	return m.dir
}

// Cleanup removes the scratch directory unless keep mode is on.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if m.keep {
		slog.Debug("Keeping scratch directory", logfields.Path(m.dir))
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.WorkspaceError("cleanup", err)
	}
	slog.Info("Removed scratch directory", logfields.Path(m.dir))
	return nil
}
