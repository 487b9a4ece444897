package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/timemory/doxsite/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doxsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
project:
  name: timemory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "timemory", cfg.Project.Name)
	assert.Equal(t, "VERSION", cfg.Project.VersionFile)
	assert.Equal(t, "..", cfg.Source.Root)
	assert.Equal(t, "build-timemory", cfg.CMake.BuildDir)
	assert.Equal(t, "doc", cfg.CMake.Target)
	assert.Equal(t, "index", cfg.Sphinx.MasterDoc)
	assert.Equal(t, "sphinx_rtd_theme", cfg.Sphinx.HTMLTheme)
	assert.Equal(t, []string{"_templates"}, cfg.Sphinx.TemplatesPath)
	assert.Equal(t, []string{"_build", "Thumbs.db", ".DS_Store"}, cfg.Sphinx.ExcludePatterns)
	assert.Contains(t, cfg.Sphinx.Extensions, "breathe")
	assert.Contains(t, cfg.Sphinx.Extensions, "recommonmark")
	assert.Equal(t, "restructuredtext", cfg.Sphinx.SourceSuffix[".rst"])
	assert.Equal(t, "markdown", cfg.Sphinx.SourceSuffix[".md"])
	assert.Equal(t, "timemory", cfg.Sphinx.Breathe.DefaultProject)
	assert.Equal(t, "doxygen-xml", cfg.Sphinx.Breathe.Projects["timemory"])
	assert.Equal(t, "Contents", cfg.Sphinx.Markdown.AutoTocTreeSection)
	assert.Equal(t, 2*time.Second, cfg.Watch.QuietWindowDuration())
	assert.Equal(t, time.Hour, cfg.Daemon.IntervalDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOXSITE_TEST_TARGET", "docs-xml")
	path := writeConfig(t, `
project:
  name: demo
cmake:
  target: ${DOXSITE_TEST_TARGET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "docs-xml", cfg.CMake.Target)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
project:
  name: demo
watch:
  quiet_window: soon
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate_AbsoluteBuildDir(t *testing.T) {
	cfg := &Config{Project: ProjectConfig{Name: "demo"}}
	cfg.applyDefaults()
	cfg.CMake.BuildDir = "/abs/build"
	require.Error(t, cfg.Validate())
}

func TestValidate_SourceSuffixKeys(t *testing.T) {
	cfg := &Config{Project: ProjectConfig{Name: "demo"}}
	cfg.applyDefaults()
	cfg.Sphinx.SourceSuffix = map[string]string{"md": "markdown"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_suffix")
}

func TestValidate_BreatheSourceDirRequired(t *testing.T) {
	cfg := &Config{Project: ProjectConfig{Name: "demo"}}
	cfg.applyDefaults()
	cfg.Sphinx.Breathe.ProjectsSource = map[string]SourceListing{"auto": {}}
	require.Error(t, cfg.Validate())
}

func TestReadVersion(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "VERSION"), []byte("3.2.0\n"), 0o600))

	cfg := &Config{}
	cfg.applyDefaults()

	version, err := cfg.ReadVersion(root)
	require.NoError(t, err)
	assert.Equal(t, "3.2.0", version)
}

func TestReadVersion_Empty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "VERSION"), []byte("  \n"), 0o600))

	cfg := &Config{}
	cfg.applyDefaults()

	_, err := cfg.ReadVersion(root)
	require.Error(t, err)
}

func TestMarkdownEvalRST(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.True(t, cfg.Sphinx.Markdown.EvalRSTEnabled())

	path := writeConfig(t, `
project:
  name: demo
sphinx:
  markdown:
    enable_eval_rst: false
`)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.Sphinx.Markdown.EvalRSTEnabled())
}

func TestHostedBuild(t *testing.T) {
	t.Setenv("READTHEDOCS", "True")
	assert.True(t, HostedBuild())

	t.Setenv("READTHEDOCS", "false")
	assert.False(t, HostedBuild())
}

func TestInit_CreatesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doxsite.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "timemory", cfg.Project.Name)
	assert.Contains(t, cfg.Source.Tools, "timem")
	assert.Contains(t, cfg.Source.Tools, "kokkos-connector")
	assert.Equal(t, "ON", cfg.CMake.Defines["TIMEMORY_BUILD_DOCS"])

	// Second init without force must refuse to overwrite.
	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Force overwrites.
	require.NoError(t, Init(path, true))
}
