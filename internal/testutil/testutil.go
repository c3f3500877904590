// Package testutil provides testing utilities for mindcontext tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// DefaultRoot is the project root used by in-memory test trees.
const DefaultRoot = "/work/repo"

// SetupProject creates an in-memory filesystem holding a project at
// DefaultRoot with a .project/context directory. The files map contains
// paths relative to the root mapped to their contents.
func SetupProject(t *testing.T, files map[string]string) (afero.Fs, string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(filepath.Join(DefaultRoot, ".project", "context"), 0755); err != nil {
		t.Fatalf("failed to create context directory: %v", err)
	}
	WriteFiles(t, fs, DefaultRoot, files)
	return fs, DefaultRoot
}

// WriteFiles writes each relative path under root, creating parent directories.
func WriteFiles(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for path, content := range files {
		full := filepath.Join(root, path)
		if err := fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file %s: %v", path, err)
		}
	}
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// ListDir returns the names of the entries in dir, or fails the test.
func ListDir(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}

// Clock is a manually advanced clock for deterministic timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ErrInjected is returned by FailingFs for injected failures.
var ErrInjected = errors.New("injected failure")

// FailingFs wraps an afero.Fs and fails selected operations. It simulates a
// process dying or a disk filling up partway through a write.
type FailingFs struct {
	afero.Fs

	mu sync.Mutex
	// FailRename makes every Rename fail.
	FailRename bool
	// FailSync makes Sync fail on files opened for writing.
	FailSync bool
	// ShortWrite makes writes to matching files persist only half of the
	// buffer before failing.
	ShortWrite bool
	// Match restricts failures to paths containing this substring. Empty matches all.
	Match string

	renames int
}

// NewFailingFs wraps base.
func NewFailingFs(base afero.Fs) *FailingFs {
	return &FailingFs{Fs: base}
}

// Renames returns how many renames were attempted.
func (f *FailingFs) Renames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renames
}

func (f *FailingFs) matches(name string) bool {
	return f.Match == "" || strings.Contains(name, f.Match)
}

// Rename implements afero.Fs.
func (f *FailingFs) Rename(oldname, newname string) error {
	f.mu.Lock()
	f.renames++
	fail := f.FailRename && f.matches(oldname)
	f.mu.Unlock()

	if fail {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrInjected}
	}
	return f.Fs.Rename(oldname, newname)
}

// OpenFile implements afero.Fs.
func (f *FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 || !f.matches(name) {
		return file, nil
	}
	return &failingFile{File: file, shortWrite: f.ShortWrite, failSync: f.FailSync}, nil
}

// Create implements afero.Fs.
func (f *FailingFs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

type failingFile struct {
	afero.File
	shortWrite bool
	failSync   bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.shortWrite {
		n, _ := f.File.Write(p[:len(p)/2])
		return n, ErrInjected
	}
	return f.File.Write(p)
}

func (f *failingFile) Sync() error {
	if f.failSync {
		return ErrInjected
	}
	return f.File.Sync()
}
