// Package layout resolves the absolute filesystem layout a documentation
// build operates on: the docs tree, the documented source tree, the scratch
// build directory, and the staging destinations for generated output.
package layout

import (
	"fmt"
	"path/filepath"

	"github.com/timemory/doxsite/internal/config"
)

// Layout holds the resolved absolute paths for one build.
type Layout struct {
	// DocsDir is the documentation source tree (prose pages, conf output).
	DocsDir string
	// SourceRoot is the root of the documented repository.
	SourceRoot string
	// BuildDir is the scratch directory the build-system driver runs in.
	BuildDir string
	// DoxygenOut is where the build target leaves generated doxygen output.
	DoxygenOut string
	// SiteDir is the final rendered site location.
	SiteDir string

	doxyfileName string
	toolsDir     string
	pythonReadme string
}

// Resolve computes the layout from the configuration, anchored at the
// current working directory.
func Resolve(cfg *config.Config) (*Layout, error) {
	docsDir, err := filepath.Abs(cfg.Source.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs directory: %w", err)
	}
	sourceRoot, err := filepath.Abs(filepath.Join(docsDir, cfg.Source.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}

	buildDir := filepath.Join(docsDir, cfg.CMake.BuildDir)

	return &Layout{
		DocsDir:      docsDir,
		SourceRoot:   sourceRoot,
		BuildDir:     buildDir,
		DoxygenOut:   filepath.Join(buildDir, "doc"),
		SiteDir:      filepath.Join(sourceRoot, "site"),
		doxyfileName: "Doxyfile." + cfg.Project.Name,
		toolsDir:     filepath.Join(sourceRoot, filepath.FromSlash(cfg.Source.ToolsDir)),
		pythonReadme: filepath.FromSlash(cfg.Source.PythonReadme),
	}, nil
}

// ConfDest is the generated Sphinx configuration file in the docs tree.
func (l *Layout) ConfDest() string { return filepath.Join(l.DocsDir, "conf.py") }

// BuildOutputs lists every path the pipeline itself writes inside the docs
// tree. Watch mode must not treat changes under these as source changes, or
// each build would trigger the next one.
func (l *Layout) BuildOutputs() []string {
	return []string{
		l.BuildDir,
		filepath.Join(l.DocsDir, "_build"),
		l.XMLDest(),
		l.DoxyfileDest(),
		l.ConfDest(),
		filepath.Join(l.DocsDir, "tools"),
		l.PythonReadmeDest(),
	}
}

// HTMLSource is the doxygen-generated HTML tree inside the scratch directory.
func (l *Layout) HTMLSource() string { return filepath.Join(l.DoxygenOut, "html") }

// XMLSource is the doxygen-generated XML tree inside the scratch directory.
func (l *Layout) XMLSource() string { return filepath.Join(l.DoxygenOut, "xml") }

// HTMLDest is where the generated HTML is staged inside the docs tree.
func (l *Layout) HTMLDest() string {
	return filepath.Join(l.DocsDir, "_build", "html", "doxygen-docs")
}

// XMLDest is where the generated XML is staged for the cross-reference tool.
func (l *Layout) XMLDest() string { return filepath.Join(l.DocsDir, "doxygen-xml") }

// DoxyfileSource is the generated Doxyfile inside the scratch directory.
func (l *Layout) DoxyfileSource() string {
	return filepath.Join(l.DoxygenOut, l.doxyfileName)
}

// DoxyfileDest is where the Doxyfile is copied inside the docs tree.
func (l *Layout) DoxyfileDest() string { return filepath.Join(l.DocsDir, l.doxyfileName) }

// ToolReadmeSource returns the README path for a tool in the source tree.
func (l *Layout) ToolReadmeSource(tool string) string {
	return filepath.Join(l.toolsDir, tool, "README.md")
}

// ToolReadmeDest returns the per-tool README destination in the docs tree.
func (l *Layout) ToolReadmeDest(tool string) string {
	return filepath.Join(l.DocsDir, "tools", tool, "README.md")
}

// ToolsIndexDest is the generated tools index page in the docs tree.
func (l *Layout) ToolsIndexDest() string {
	return filepath.Join(l.DocsDir, "tools", "README.md")
}

// PythonReadmeSource is the Python binding README in the source tree.
func (l *Layout) PythonReadmeSource() string {
	return filepath.Join(l.SourceRoot, l.pythonReadme)
}

// PythonReadmeDest is the Python API page destination in the docs tree.
func (l *Layout) PythonReadmeDest() string {
	return filepath.Join(l.DocsDir, "api", "python.md")
}
