package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "README.md")
	dst := filepath.Join(dir, "out", "nested", "README.md")
	writeFile(t, src, "# hello")

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(data))
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestCopyFile_SourceIsDirectory(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(dir, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "html")
	writeFile(t, filepath.Join(src, "index.html"), "<html/>")
	writeFile(t, filepath.Join(src, "classes", "a.html"), "<html/>")
	writeFile(t, filepath.Join(src, "search", "search.js"), "js")

	dst := filepath.Join(dir, "staged")
	require.NoError(t, CopyTree(src, dst))

	assert.FileExists(t, filepath.Join(dst, "index.html"))
	assert.FileExists(t, filepath.Join(dst, "classes", "a.html"))
	assert.FileExists(t, filepath.Join(dst, "search", "search.js"))
}

func TestCopyTree_Excludes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	writeFile(t, filepath.Join(src, "keep.md"), "keep")
	writeFile(t, filepath.Join(src, "_build", "skip.html"), "skip")
	writeFile(t, filepath.Join(src, "sub", ".DS_Store"), "junk")

	dst := filepath.Join(dir, "out")
	require.NoError(t, CopyTree(src, dst, "_build/**", "_build", "**/.DS_Store"))

	assert.FileExists(t, filepath.Join(dst, "keep.md"))
	assert.NoFileExists(t, filepath.Join(dst, "_build", "skip.html"))
	assert.NoFileExists(t, filepath.Join(dst, "sub", ".DS_Store"))
}

func TestReplaceTree_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fresh")
	writeFile(t, filepath.Join(src, "new.html"), "new")

	dst := filepath.Join(dir, "dest")
	writeFile(t, filepath.Join(dst, "stale.html"), "stale")

	require.NoError(t, ReplaceTree(src, dst))

	assert.FileExists(t, filepath.Join(dst, "new.html"))
	assert.NoFileExists(t, filepath.Join(dst, "stale.html"))
}

func TestReplaceTree_MissingSourceKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dest")
	writeFile(t, filepath.Join(dst, "previous.html"), "previous")

	err := ReplaceTree(filepath.Join(dir, "absent"), dst)
	require.Error(t, err)

	// The previous destination must survive a failed sync.
	assert.FileExists(t, filepath.Join(dst, "previous.html"))
}

func TestReplaceTree_CreatesParent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "f.xml"), "x")

	dst := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, ReplaceTree(src, dst))
	assert.FileExists(t, filepath.Join(dst, "f.xml"))
}
