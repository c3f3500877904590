package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/testutil"
)

func TestLocator_Find(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/", map[string]string{
		"mono/.git/HEAD": "ref: refs/heads/main\n",
		"mono/services/api/.project/context/.keep": "",
		"mono/services/api/go.mod":                 "module api\n",
		"mono/services/web/package.json":           "{}",
		"mono/services/web/src/app.js":             "",
		"linked/.git":                              "gitdir: /mono/.git/worktrees/linked\n",
		"plain/sub/deeper/file.txt":                "",
		"rusty/Cargo.toml":                         "",
	})

	tests := []struct {
		name       string
		start      string
		wantPath   string
		wantMarker Marker
	}{
		{"context dir wins over outer git", "/mono/services/api/internal", "/mono/services/api", MarkerContextDir},
		{"start directory itself", "/mono/services/api", "/mono/services/api", MarkerContextDir},
		{"manifest below git", "/mono/services/web/src", "/mono/services/web", MarkerManifest},
		{"git directory", "/mono/services", "/mono", MarkerVCS},
		{"git file in worktree", "/linked/pkg", "/linked", MarkerVCS},
		{"cargo manifest", "/rusty", "/rusty", MarkerManifest},
	}

	loc := NewLocator(fs, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := loc.Find(tt.start)
			if err != nil {
				t.Fatalf("Find(%q) error = %v", tt.start, err)
			}
			if root.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", root.Path, tt.wantPath)
			}
			if root.Marker != tt.wantMarker {
				t.Errorf("Marker = %v, want %v", root.Marker, tt.wantMarker)
			}
		})
	}
}

func TestLocator_ContextDirBeatsGitAtSameLevel(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/repo", map[string]string{
		".git/HEAD":              "",
		".project/context/.keep": "",
		"go.mod":                 "",
	})

	root, err := NewLocator(fs, nil).Find("/repo")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if root.Marker != MarkerContextDir {
		t.Errorf("Marker = %v, want context-dir", root.Marker)
	}
	if root.Evidence != filepath.Join("/repo", ContextDir) {
		t.Errorf("Evidence = %q", root.Evidence)
	}
}

func TestLocator_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/", map[string]string{
		"plain/sub/file.txt": "",
	})

	_, err := NewLocator(fs, nil).Find("/plain/sub")
	if !errors.Is(err, errors.ErrNoProjectRoot) {
		t.Errorf("Find() error = %v, want ErrNoProjectRoot", err)
	}
}

func TestLocator_FilesystemRootIsNotConsidered(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/", map[string]string{
		"go.mod":       "",
		"a/b/file.txt": "",
	})

	if _, err := NewLocator(fs, nil).Find("/a/b"); !errors.Is(err, errors.ErrNoProjectRoot) {
		t.Errorf("Find() error = %v, want ErrNoProjectRoot", err)
	}
}

func TestLocator_CustomManifests(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFiles(t, fs, "/", map[string]string{
		"proj/build.gradle": "",
		"proj/go.mod/.keep": "",
	})

	if _, err := NewLocator(fs, nil).Find("/proj"); !errors.Is(err, errors.ErrNoProjectRoot) {
		t.Errorf("default manifests should ignore build.gradle and a go.mod directory, got %v", err)
	}

	root, err := NewLocator(fs, []string{"build.gradle"}).Find("/proj")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if root.Path != "/proj" || root.Marker != MarkerManifest {
		t.Errorf("root = %+v", root)
	}
}

func TestMarker_String(t *testing.T) {
	tests := map[Marker]string{
		MarkerNone:       "none",
		MarkerContextDir: "context-dir",
		MarkerVCS:        "vcs",
		MarkerManifest:   "manifest",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Marker(%d).String() = %q, want %q", m, got, want)
		}
	}
}
