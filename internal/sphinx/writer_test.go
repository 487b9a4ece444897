package sphinx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timemory/doxsite/internal/config"
)

func siteConfig(t *testing.T) *SiteConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doxsite.yaml")
	data := `
project:
  name: timemory
  author: Jonathan R. Madsen
  copyright: "2020, The Regents of the University of California"
sphinx:
  breathe:
    projects_source:
      auto:
        dir: ../source
        files: [library.cpp, trace.cpp]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return NewSiteConfig(cfg, "3.2.0")
}

func TestRender_ProjectMetadata(t *testing.T) {
	out := Render(siteConfig(t))

	assert.Contains(t, out, "project = 'timemory'")
	assert.Contains(t, out, "author = 'Jonathan R. Madsen'")
	assert.Contains(t, out, "version = '3.2.0'")
	assert.Contains(t, out, "release = '3.2.0'")
}

func TestRender_GeneralConfiguration(t *testing.T) {
	out := Render(siteConfig(t))

	assert.Contains(t, out, "'sphinx.ext.autodoc'")
	assert.Contains(t, out, "'recommonmark'")
	assert.Contains(t, out, "'breathe'")
	assert.Contains(t, out, "source_suffix = {'.md': 'markdown', '.rst': 'restructuredtext'}")
	assert.Contains(t, out, "master_doc = 'index'")
	assert.Contains(t, out, "exclude_patterns = ['_build', 'Thumbs.db', '.DS_Store']")
	assert.Contains(t, out, "html_theme = 'sphinx_rtd_theme'")
	assert.Contains(t, out, "html_static_path = ['_static']")
	assert.Contains(t, out, "pygments_style = 'sphinx'")
	assert.Contains(t, out, "default_role = None")
}

func TestRender_Breathe(t *testing.T) {
	out := Render(siteConfig(t))

	assert.Contains(t, out, "breathe_projects = {'timemory': 'doxygen-xml'}")
	assert.Contains(t, out, "breathe_default_project = 'timemory'")
	assert.Contains(t, out, "'auto': ('../source', ['library.cpp', 'trace.cpp'])")
}

func TestRender_SetupHook(t *testing.T) {
	out := Render(siteConfig(t))

	assert.Contains(t, out, "from recommonmark.transform import AutoStructify")
	assert.Contains(t, out, "def setup(app):")
	assert.Contains(t, out,
		"app.add_config_value('recommonmark_config', "+
			"{'auto_toc_tree_section': 'Contents', 'enable_auto_doc_ref': False, 'enable_eval_rst': True}, True)")
	assert.Contains(t, out, "app.add_transform(AutoStructify)")
}

func TestRender_Deterministic(t *testing.T) {
	sc := siteConfig(t)
	first := Render(sc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Render(sc))
	}
}

func TestRender_EmptyHooks(t *testing.T) {
	sc := siteConfig(t)
	sc.Hooks = nil
	out := Render(sc)
	assert.Contains(t, out, "def setup(app):\n    pass\n")
}

func TestRender_EscapesQuotes(t *testing.T) {
	sc := siteConfig(t)
	sc.Copyright = "2020, O'Brien"
	out := Render(sc)
	assert.Contains(t, out, `copyright = '2020, O\'Brien'`)
}

func TestWriteConf(t *testing.T) {
	docsDir := t.TempDir()
	require.NoError(t, WriteConf(siteConfig(t), docsDir))

	data, err := os.ReadFile(filepath.Join(docsDir, "conf.py"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Configuration file for the Sphinx documentation builder."))
}

func TestMarkdownHook_EvalRSTDefault(t *testing.T) {
	hook := MarkdownHook(config.MarkdownConfig{AutoTocTreeSection: "Contents"})
	require.Len(t, hook.ConfigValues, 1)
	assert.Equal(t, "recommonmark_config", hook.ConfigValues[0].Name)
	assert.True(t, hook.ConfigValues[0].Rebuild)
	require.Len(t, hook.Transforms, 1)
	assert.Equal(t, "AutoStructify", hook.Transforms[0].Name)
}
