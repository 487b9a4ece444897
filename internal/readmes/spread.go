// Package readmes fans out per-tool README files from the source tree into
// the documentation tree and generates an index page for them.
package readmes

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	derrors "github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/fsutil"
	"github.com/timemory/doxsite/internal/layout"
	"github.com/timemory/doxsite/internal/logfields"
	"github.com/timemory/doxsite/internal/markdown"
)

// Spreader copies tool READMEs into per-tool documentation directories.
type Spreader struct {
	layout         *layout.Layout
	tools          []string
	pythonReadme   bool
	evalRSTEnabled bool
	titler         cases.Caser
}

// NewSpreader creates a spreader for the given tool list. pythonReadme
// controls whether the Python binding README is copied to the API section;
// evalRSTEnabled tells the spreader whether embedded reStructuredText blocks
// found in READMEs will render or come out as literal code.
func NewSpreader(l *layout.Layout, tools []string, pythonReadme, evalRSTEnabled bool) *Spreader {
	return &Spreader{
		layout:         l,
		tools:          tools,
		pythonReadme:   pythonReadme,
		evalRSTEnabled: evalRSTEnabled,
		titler:         cases.Title(language.English),
	}
}

// Spread copies every configured tool README into the docs tree. A missing
// source README aborts the copy; partial fan-out would silently drop pages
// from the rendered site.
func (s *Spreader) Spread() error {
	for _, tool := range s.tools {
		src := s.layout.ToolReadmeSource(tool)
		if _, err := os.Stat(src); err != nil {
			return derrors.ReadmeMissing(tool, src)
		}
		dst := s.layout.ToolReadmeDest(tool)
		if err := fsutil.CopyFile(src, dst); err != nil {
			return derrors.CopyError(src, dst, err)
		}
		slog.Debug("Copied tool README", logfields.Tool(tool), logfields.Path(dst))

		if !s.evalRSTEnabled {
			if body, err := os.ReadFile(dst); err == nil && markdown.HasEvalRST(body) {
				slog.Warn("README contains eval_rst blocks but eval_rst is disabled; they will render as literal code",
					logfields.Tool(tool))
			}
		}
	}

	if len(s.tools) > 0 {
		if err := s.writeIndex(); err != nil {
			return err
		}
	}

	if s.pythonReadme {
		src := s.layout.PythonReadmeSource()
		dst := s.layout.PythonReadmeDest()
		if err := fsutil.CopyFile(src, dst); err != nil {
			return derrors.CopyError(src, dst, err)
		}
		slog.Debug("Copied python README", logfields.Path(dst))
	}

	slog.Info("Spread tool READMEs", "count", len(s.tools))
	return nil
}

// writeIndex generates the tools index page listing every copied README.
// Entry titles come from each README's top heading, falling back to the
// title-cased directory name.
func (s *Spreader) writeIndex() error {
	var b strings.Builder
	b.WriteString("# Tools\n\n")
	for _, tool := range s.tools {
		fmt.Fprintf(&b, "- [%s](%s/README.md)\n", s.pageTitle(tool), tool)
	}

	dst := s.layout.ToolsIndexDest()
	if err := os.WriteFile(dst, []byte(b.String()), 0o644); err != nil {
		return derrors.CopyError("", dst, err)
	}
	return nil
}

// Title derives a human-readable page title from a tool directory name.
func (s *Spreader) Title(tool string) string {
	return s.titler.String(strings.ReplaceAll(tool, "-", " "))
}

// pageTitle prefers the README's first heading when it has one.
func (s *Spreader) pageTitle(tool string) string {
	body, err := os.ReadFile(s.layout.ToolReadmeDest(tool))
	if err != nil {
		return s.Title(tool)
	}
	for _, h := range markdown.Outline(body) {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	return s.Title(tool)
}
