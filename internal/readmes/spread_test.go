package readmes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timemory/doxsite/internal/config"
	derrors "github.com/timemory/doxsite/internal/errors"
	"github.com/timemory/doxsite/internal/layout"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll("docs", 0o750))

	cfg := &config.Config{
		Project: config.ProjectConfig{Name: "timemory"},
		Source: config.SourceConfig{
			Root:         "..",
			DocsDir:      "docs",
			ToolsDir:     "source/tools",
			PythonReadme: "source/python/README.md",
		},
		CMake: config.CMakeConfig{BuildDir: "build-timemory"},
	}
	l, err := layout.Resolve(cfg)
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func TestSpread_CopiesToolReadmes(t *testing.T) {
	l := testLayout(t)
	tools := []string{"timem", "timemory-avail"}
	for _, tool := range tools {
		writeFile(t, l.ToolReadmeSource(tool), "# "+tool)
	}

	require.NoError(t, NewSpreader(l, tools, false, true).Spread())

	for _, tool := range tools {
		data, err := os.ReadFile(l.ToolReadmeDest(tool))
		require.NoError(t, err)
		assert.Equal(t, "# "+tool, string(data))
	}
}

func TestSpread_MissingReadmeFails(t *testing.T) {
	l := testLayout(t)
	writeFile(t, l.ToolReadmeSource("timem"), "# timem")

	err := NewSpreader(l, []string{"timem", "absent-tool"}, false, true).Spread()
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryFileSystem))
}

func TestSpread_PythonReadme(t *testing.T) {
	l := testLayout(t)
	writeFile(t, l.PythonReadmeSource(), "# python bindings")

	require.NoError(t, NewSpreader(l, nil, true, true).Spread())

	data, err := os.ReadFile(l.PythonReadmeDest())
	require.NoError(t, err)
	assert.Equal(t, "# python bindings", string(data))
}

func TestSpread_WritesToolsIndex(t *testing.T) {
	l := testLayout(t)
	// timem has a top heading; kokkos-connector does not, so its index
	// title falls back to the title-cased directory name.
	writeFile(t, l.ToolReadmeSource("timem"), "# The timem tool\n\nbody")
	writeFile(t, l.ToolReadmeSource("kokkos-connector"), "no heading here")

	require.NoError(t, NewSpreader(l, []string{"timem", "kokkos-connector"}, false, true).Spread())

	data, err := os.ReadFile(l.ToolsIndexDest())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[The timem tool](timem/README.md)")
	assert.Contains(t, string(data), "[Kokkos Connector](kokkos-connector/README.md)")
}

func TestTitle(t *testing.T) {
	s := NewSpreader(nil, nil, false, true)
	assert.Equal(t, "Timem", s.Title("timem"))
	assert.Equal(t, "Timemory Run", s.Title("timemory-run"))
	assert.Equal(t, "Kokkos Connector", s.Title("kokkos-connector"))
}
