// Package fsutil provides the filesystem primitives used to stage generated
// documentation: file and tree copies, and delete-then-replace directory
// synchronization that cannot leave a half-populated destination behind.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// CopyFile copies a single file, creating the destination directory if needed.
// Permissions of the source file are preserved.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

// CopyTree recursively copies a directory tree. Paths (relative to src, slash
// separated) matching any of the exclude patterns are skipped; patterns use
// doublestar glob syntax.
func CopyTree(src, dst string, exclude ...string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source tree: %w", err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, 0o750)
		}

		if excluded(filepath.ToSlash(rel), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return CopyFile(path, target)
	})
}

// ReplaceTree replaces dst with a copy of src. The copy is staged into a
// sibling temporary directory first and swapped in only once complete, so a
// failed copy leaves any previous destination untouched.
func ReplaceTree(src, dst string, exclude ...string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create destination parent: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(dst), filepath.Base(dst)+".staging-*")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := CopyTree(src, staging, exclude...); err != nil {
		return fmt.Errorf("stage tree copy: %w", err)
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove previous destination: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return fmt.Errorf("swap staged tree into place: %w", err)
	}
	return nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
