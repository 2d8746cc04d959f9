// Package fileutil provides atomic file writes and small path helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrStaged indicates a staged file was already committed or discarded.
var ErrStaged = errors.New("staged file already finalized")

// outputPerm is the mode of files written through Stage.
const outputPerm = 0o644

// Staged is a fully written temporary file waiting to replace its target.
// The temporary file lives in the target's directory so Commit is a rename
// within one filesystem.
type Staged struct {
	Target string
	tmp    string
	done   bool

	committed bool
	existed   bool   // target existed before Commit
	previous  []byte // target content before Commit
}

// Stage writes content to a temporary file next to target.
// The parent directory is created if needed. Nothing is visible at target
// until Commit. A target that exists and is not a regular file is rejected
// here, before any output is replaced.
func Stage(target string, content []byte) (*Staged, error) {
	if info, err := os.Stat(target); err == nil && !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", target)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmp := f.Name()

	fail := func(step string, err error) (*Staged, error) {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("%s %s: %w", step, tmp, err)
	}

	if _, err := f.Write(content); err != nil {
		return fail("writing", err)
	}
	if err := f.Chmod(outputPerm); err != nil {
		return fail("setting mode of", err)
	}
	if err := f.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("closing %s: %w", tmp, err)
	}

	return &Staged{Target: target, tmp: tmp}, nil
}

// Commit renames the temporary file onto the target. The previous content
// of the target is remembered so Rollback can restore it.
func (s *Staged) Commit() error {
	if s.done {
		return fmt.Errorf("%w: %s", ErrStaged, s.Target)
	}
	s.done = true

	previous, err := os.ReadFile(s.Target)
	switch {
	case err == nil:
		s.existed, s.previous = true, previous
	case !errors.Is(err, fs.ErrNotExist):
		_ = os.Remove(s.tmp)
		return fmt.Errorf("reading %s: %w", s.Target, err)
	}

	if err := os.Rename(s.tmp, s.Target); err != nil {
		_ = os.Remove(s.tmp)
		return fmt.Errorf("renaming onto %s: %w", s.Target, err)
	}
	s.committed = true
	return nil
}

// Rollback undoes a successful Commit: the previous content is written back,
// or the target is removed if it did not exist. No-op otherwise.
func (s *Staged) Rollback() error {
	if !s.committed {
		return nil
	}
	s.committed = false

	if !s.existed {
		return os.Remove(s.Target)
	}
	restore, err := Stage(s.Target, s.previous)
	if err != nil {
		return err
	}
	return restore.Commit()
}

// Discard removes the temporary file. Safe to call after Commit.
func (s *Staged) Discard() {
	if s.done {
		return
	}
	s.done = true
	_ = os.Remove(s.tmp)
}

// CheckWritableDir reports whether files can be created in dir.
func CheckWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}

	f, err := os.CreateTemp(dir, ".webembed-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ResolvePath joins a relative path onto base and cleans the result.
// Absolute paths are returned cleaned.
func ResolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, filepath.FromSlash(path))
}

// IsURL returns true if the string looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
