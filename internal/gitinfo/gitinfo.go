// Package gitinfo resolves repository metadata recorded in build reports.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Info describes the repository state a build was produced from.
type Info struct {
	Commit string
	Branch string
}

// Describe opens the repository containing path and returns its HEAD state.
// A path outside any repository returns ErrNotRepository.
func Describe(path string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	info := &Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}

// ErrNotRepository indicates the path is not inside a git repository.
var ErrNotRepository = fmt.Errorf("not a git repository")
