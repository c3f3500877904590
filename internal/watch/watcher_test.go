package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupDir(t *testing.T) (root, contextDir string) {
	t.Helper()
	root = t.TempDir()
	contextDir = filepath.Join(root, ".project", "context")
	if err := os.MkdirAll(contextDir, 0755); err != nil {
		t.Fatal(err)
	}
	return root, contextDir
}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(root, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func expectChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a change")
	}
}

func expectQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case <-w.Changes():
		t.Fatal("unexpected change notification")
	case <-time.After(d):
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for a missing context directory")
	}
}

func TestWatcher_FocusWrite(t *testing.T) {
	root, dir := setupDir(t)
	w := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(dir, "focus.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expectChange(t, w)
}

func TestWatcher_AtomicReplace(t *testing.T) {
	root, dir := setupDir(t)
	w := startWatcher(t, root)

	tmp := filepath.Join(dir, ".focus.json.abc.tmp")
	if err := os.WriteFile(tmp, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, "focus.json")); err != nil {
		t.Fatal(err)
	}
	expectChange(t, w)
	expectQuiet(t, w, 150*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root, dir := setupDir(t)
	w := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	expectQuiet(t, w, 150*time.Millisecond)
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	root, dir := setupDir(t)
	w := startWatcher(t, root)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "progress.md"), []byte{byte('a' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	expectChange(t, w)
	expectQuiet(t, w, 150*time.Millisecond)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root, _ := setupDir(t)
	w, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit")
	}
}
