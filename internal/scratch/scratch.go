// SPDX-License-Identifier: EPL-2.0

// Package scratch tracks the temporary files of a single conversion call.
//
// Every file is created with os.CreateTemp under a per-call prefix, so
// concurrent calls sharing a directory never collide. Release removes all
// of them; Commit moves a finished file to its final name and stops
// tracking it.
package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// OutputMode is the permission of committed files.
const OutputMode fs.FileMode = 0o644

type Scope struct {
	dir    string
	prefix string

	mu    sync.Mutex
	paths []string
}

// New returns a Scope creating files in dir (os.TempDir when empty). id is
// embedded in every file name.
func New(dir, id string) *Scope {
	if dir == "" {
		dir = os.TempDir()
	}

	return &Scope{dir: dir, prefix: "audconv-" + id + "-"}
}

func (s *Scope) track(path string) {
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
}

func (s *Scope) create(dir, pattern string) (*os.File, error) {
	f, err := os.CreateTemp(dir, s.prefix+pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}
	s.track(f.Name())

	return f, nil
}

// Create opens a new tracked file. pattern follows os.CreateTemp.
func (s *Scope) Create(pattern string) (*os.File, error) {
	return s.create(s.dir, pattern)
}

// Path reserves a tracked, empty file and returns its name, for tools that
// write their own output.
func (s *Scope) Path(pattern string) (string, error) {
	f, err := s.Create(pattern)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w", err)
	}

	return f.Name(), nil
}

// WriteFile stores data in a new tracked file.
func (s *Scope) WriteFile(pattern string, data []byte) (string, error) {
	f, err := s.Create(pattern)
	if err != nil {
		return "", err
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return "", fmt.Errorf("writing temporary file: %w", err)
	}

	return f.Name(), nil
}

// Sibling reserves a tracked file in the directory of dst, so that Commit
// can rename it over dst atomically.
func (s *Scope) Sibling(dst string) (string, error) {
	f, err := s.create(filepath.Dir(dst), filepath.Base(dst)+".partial-*")
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w", err)
	}

	return f.Name(), nil
}

// Commit gives tmp OutputMode and renames it to dst. On success tmp is no
// longer owned by the scope.
func (s *Scope) Commit(tmp, dst string) error {
	if err := os.Chmod(tmp, OutputMode); err != nil {
		return fmt.Errorf("committing %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("committing %s: %w", dst, err)
	}

	s.Keep(tmp)

	return nil
}

// Keep stops tracking path so that Release leaves it in place.
func (s *Scope) Keep(path string) {
	s.mu.Lock()
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool { return p == path })
	s.mu.Unlock()
}

// Release removes every tracked file. It is safe to call more than once.
func (s *Scope) Release() error {
	s.mu.Lock()
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Len is the number of files currently tracked.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.paths)
}
