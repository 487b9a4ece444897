// Package doxygen stages generated API documentation output from the scratch
// build directory into the documentation source tree.
package doxygen

import (
	"log/slog"
	"os"

	derrors "github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/fsutil"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/logfields"
)

// Syncer copies the generated HTML and XML trees plus the generated Doxyfile
// into their destinations inside the docs tree. Destinations are replaced
// wholesale; a previous sync never bleeds into a new one.
type Syncer struct {
	layout *layout.Layout
}

// NewSyncer creates a syncer for the given build layout.
func NewSyncer(l *layout.Layout) *Syncer {
	return &Syncer{layout: l}
}

// Sync stages all generated output. The generated trees must exist; a missing
// tree means the build target did not run or the feature toggles were off.
func (s *Syncer) Sync() error {
	for _, src := range []string{s.layout.HTMLSource(), s.layout.XMLSource()} {
		if stat, err := os.Stat(src); err != nil || !stat.IsDir() {
			return derrors.DoxygenOutputMissing(src)
		}
	}

	if err := fsutil.ReplaceTree(s.layout.HTMLSource(), s.layout.HTMLDest()); err != nil {
		return derrors.CopyError(s.layout.HTMLSource(), s.layout.HTMLDest(), err)
	}
	slog.Info("Staged doxygen HTML", logfields.Path(s.layout.HTMLDest()))

	if err := fsutil.ReplaceTree(s.layout.XMLSource(), s.layout.XMLDest()); err != nil {
		return derrors.CopyError(s.layout.XMLSource(), s.layout.XMLDest(), err)
	}
	slog.Info("Staged doxygen XML", logfields.Path(s.layout.XMLDest()))

	if err := fsutil.CopyFile(s.layout.DoxyfileSource(), s.layout.DoxyfileDest()); err != nil {
		return derrors.CopyError(s.layout.DoxyfileSource(), s.layout.DoxyfileDest(), err)
	}
	slog.Debug("Copied Doxyfile", logfields.Path(s.layout.DoxyfileDest()))

	return nil
}
