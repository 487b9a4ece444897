package gitinfo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("3.2.0\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("VERSION")
	require.NoError(t, err)

	hash, err := wt.Commit("add version file", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestDescribe(t *testing.T) {
	dir, hash := initRepo(t)

	info, err := Describe(dir)
	require.NoError(t, err)
	assert.Equal(t, hash, info.Commit)
	assert.NotEmpty(t, info.Branch)
}

func TestDescribe_Subdirectory(t *testing.T) {
	dir, hash := initRepo(t)
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	info, err := Describe(sub)
	require.NoError(t, err)
	assert.Equal(t, hash, info.Commit)
}

func TestDescribe_NotARepository(t *testing.T) {
	_, err := Describe(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRepository))
}
