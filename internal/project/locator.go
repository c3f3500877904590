// Package project locates the directory that owns a mindcontext record and
// resolves the well-known files beneath it. All filesystem access goes
// through an injected afero.Fs so the walk can run against in-memory trees.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/errors"
)

// Marker identifies which kind of evidence made a directory a project root.
type Marker int

const (
	// MarkerNone means no root was found.
	MarkerNone Marker = iota
	// MarkerContextDir is a .project/context directory.
	MarkerContextDir
	// MarkerVCS is a .git directory, or a .git file in a linked worktree.
	MarkerVCS
	// MarkerManifest is a package manifest such as go.mod.
	MarkerManifest
)

// String returns a short label for the marker.
func (m Marker) String() string {
	switch m {
	case MarkerContextDir:
		return "context-dir"
	case MarkerVCS:
		return "vcs"
	case MarkerManifest:
		return "manifest"
	default:
		return "none"
	}
}

// DefaultManifests are the manifest file names checked when a directory has
// neither a context directory nor VCS metadata.
var DefaultManifests = []string{"package.json", "go.mod", "Cargo.toml", "pyproject.toml"}

// Root is a resolved project root.
type Root struct {
	Path   string
	Marker Marker
	// Evidence is the path of the entry that matched.
	Evidence string
}

// Locator walks upward from a starting directory looking for a project root.
type Locator struct {
	fs        afero.Fs
	manifests []string
}

// NewLocator creates a Locator over fs. A nil manifests slice uses DefaultManifests.
func NewLocator(fs afero.Fs, manifests []string) *Locator {
	if manifests == nil {
		manifests = DefaultManifests
	}
	return &Locator{fs: fs, manifests: manifests}
}

// Find returns the nearest ancestor of start (start included) carrying a
// project marker. At each level the context directory wins over VCS
// metadata, which wins over a manifest, so a nested .project/context
// resolves to the innermost owner inside a monorepo. The filesystem root
// itself is never considered.
func (l *Locator) Find(start string) (Root, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Root{}, fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return Root{}, errors.ErrNoProjectRoot
		}

		if root, ok := l.check(dir); ok {
			return root, nil
		}
		dir = parent
	}
}

func (l *Locator) check(dir string) (Root, bool) {
	contextDir := filepath.Join(dir, ContextDir)
	if ok, _ := afero.IsDir(l.fs, contextDir); ok {
		return Root{Path: dir, Marker: MarkerContextDir, Evidence: contextDir}, true
	}

	gitPath := filepath.Join(dir, ".git")
	if info, err := l.fs.Stat(gitPath); err == nil {
		// .git can be a directory (normal repo) or a file (worktree)
		if info.IsDir() || info.Mode().IsRegular() {
			return Root{Path: dir, Marker: MarkerVCS, Evidence: gitPath}, true
		}
	}

	for _, name := range l.manifests {
		p := filepath.Join(dir, name)
		if info, err := l.fs.Stat(p); err == nil && !info.IsDir() {
			return Root{Path: dir, Marker: MarkerManifest, Evidence: p}, true
		}
	}

	return Root{}, false
}

// FindRoot is a convenience wrapper over the OS filesystem with default manifests.
func FindRoot(start string) (string, error) {
	root, err := NewLocator(afero.NewOsFs(), nil).Find(start)
	if err != nil {
		return "", err
	}
	return root.Path, nil
}

// WorkingDir returns the process working directory, or "." if it cannot be read.
func WorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
