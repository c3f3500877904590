package gate

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/logging"
	"github.com/Iron-Ham/mindcontext/internal/testutil"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const strictRecord = `{"current_focus":{"type":"epic","name":"Auth","epic":"auth"},"config":{"workflow_enforcement":"strict"}}`

func newTestGate(t *testing.T, files map[string]string, opts ...Option) (*Gate, afero.Fs, string) {
	t.Helper()
	fsys, root := testutil.SetupProject(t, files)
	store := focus.NewStore(fsys)
	g, err := New(fsys, store, config.Default().Gate, append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g, fsys, root
}

func setModTime(t *testing.T, fsys afero.Fs, path string, mtime time.Time) {
	t.Helper()
	if err := fsys.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes(%s) error = %v", path, err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := config.Default().Gate
	cfg.ExemptPatterns = []string{"[oops"}
	if _, err := New(afero.NewMemMapFs(), nil, cfg); err == nil {
		t.Error("expected error for an invalid pattern")
	}
}

func TestGate_Exempt(t *testing.T) {
	g, _, _ := newTestGate(t, nil)

	tests := []struct {
		path string
		want bool
	}{
		{"/work/repo/.project/plans/auth.md", true},
		{"/work/repo/.project/context/focus.json", true},
		{"/work/repo/.project/prds/login.md", true},
		{"/work/repo/.project/epics/auth/001.md", true},
		{"/work/repo/.project/config.json", true},
		{"/work/repo/CLAUDE.md", true},
		{"/work/repo/docs/CLAUDE.md", true},
		{".project/plans/x.md", true},
		{`C:\work\repo\.project\plans\x.md`, filepath.Separator == '\\'},
		{"/work/repo/src/main.go", false},
		{"/work/repo/.project/notes.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.Exempt(tt.path); got != tt.want {
				t.Errorf("Exempt(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestGate_Resolve(t *testing.T) {
	g, _, _ := newTestGate(t, nil)

	legacy, err := focus.Decode([]byte(`{"workflow_enforcement":"strict"}`))
	if err != nil {
		t.Fatal(err)
	}
	withConfig := focus.New()
	withConfig.Config = &focus.Settings{WorkflowEnforcement: "off"}

	tests := []struct {
		name     string
		state    *focus.State
		override *config.ProjectFile
		want     string
	}{
		{"default", focus.New(), nil, "remind"},
		{"record config", withConfig, nil, "off"},
		{"legacy top-level", legacy, nil, "strict"},
		{"project file wins", withConfig, &config.ProjectFile{WorkflowEnforcement: "strict"}, "strict"},
		{"empty project file defers", legacy, &config.ProjectFile{}, "strict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Resolve(tt.state, tt.override); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGate_Evaluate(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		path    string
		allowed bool
		reason  string
	}{
		{
			name:    "no record defaults to remind",
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name:    "remind allows",
			files:   map[string]string{".project/context/focus.json": `{"config":{"workflow_enforcement":"remind"}}`},
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name:    "unknown mode allows",
			files:   map[string]string{".project/context/focus.json": `{"config":{"workflow_enforcement":"paranoid"}}`},
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name:    "strict without plans dir",
			files:   map[string]string{".project/context/focus.json": strictRecord},
			path:    "/work/repo/src/a.go",
			allowed: false,
			reason:  ReasonNoPlansDir,
		},
		{
			name: "strict with empty plans dir",
			files: map[string]string{
				".project/context/focus.json": strictRecord,
				".project/plans/notes.txt":    "not a plan",
			},
			path:    "/work/repo/src/a.go",
			allowed: false,
			reason:  ReasonNoPlans,
		},
		{
			name: "strict with plan naming the epic",
			files: map[string]string{
				".project/context/focus.json":    strictRecord,
				".project/plans/AUTH-rollout.md": "# plan",
			},
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name: "strict bypassed",
			files: map[string]string{
				".project/context/focus.json": `{"workflow_bypass":true,"config":{"workflow_enforcement":"strict"}}`,
			},
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name: "project file forces strict",
			files: map[string]string{
				".project/context/focus.json": `{"config":{"workflow_enforcement":"off"}}`,
				".project/config.json":        `{"workflow_enforcement":"strict"}`,
			},
			path:    "/work/repo/src/a.go",
			allowed: false,
			reason:  ReasonNoPlansDir,
		},
		{
			name: "project file relaxes strict",
			files: map[string]string{
				".project/context/focus.json": strictRecord,
				".project/config.json":        `{"workflow_enforcement":"remind"}`,
			},
			path:    "/work/repo/src/a.go",
			allowed: true,
		},
		{
			name:    "exempt path in strict mode",
			files:   map[string]string{".project/context/focus.json": strictRecord},
			path:    "/work/repo/.project/plans/new.md",
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, root := newTestGate(t, tt.files)
			v, err := g.Evaluate(root, tt.path)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if v.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v (%s)", v.Allowed, tt.allowed, v.Why)
			}
			if v.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.reason)
			}
		})
	}
}

func TestGate_PlanFreshness(t *testing.T) {
	record := `{"current_focus":{"epic":"billing"},"config":{"workflow_enforcement":"strict"}}`
	plan := filepath.Join(testutil.DefaultRoot, ".project", "plans", "refactor.md")

	tests := []struct {
		name    string
		age     time.Duration
		allowed bool
	}{
		{"fresh", time.Hour, true},
		{"just inside", 24*time.Hour - time.Second, true},
		{"at the limit", 24 * time.Hour, false},
		{"old", 48 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fsys, root := newTestGate(t, map[string]string{
				".project/context/focus.json": record,
				".project/plans/refactor.md":  "# plan",
			})
			setModTime(t, fsys, plan, now.Add(-tt.age))

			v, err := g.Evaluate(root, "/work/repo/src/a.go")
			if err != nil {
				t.Fatal(err)
			}
			if v.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", v.Allowed, tt.allowed)
			}
			if !tt.allowed && v.Reason != `No recent plan found for epic "billing".` {
				t.Errorf("Reason = %q", v.Reason)
			}
		})
	}
}

func TestGate_StaleWithoutEpic(t *testing.T) {
	g, fsys, root := newTestGate(t, map[string]string{
		".project/context/focus.json": `{"config":{"workflow_enforcement":"strict"}}`,
		".project/plans/old.md":       "# plan",
	})
	setModTime(t, fsys, filepath.Join(root, ".project", "plans", "old.md"), now.Add(-72*time.Hour))

	v, err := g.Evaluate(root, "/work/repo/src/a.go")
	if err != nil {
		t.Fatal(err)
	}
	if v.Allowed || v.Reason != "No recent plan found." {
		t.Errorf("Evaluate() = %+v", v)
	}
}

func TestGate_NoRoot(t *testing.T) {
	g, _, _ := newTestGate(t, nil)
	v, err := g.Evaluate("", "/somewhere/a.go")
	if err != nil || !v.Allowed {
		t.Errorf("Evaluate(no root) = %+v, %v", v, err)
	}
}

func TestGate_Check(t *testing.T) {
	var logs bytes.Buffer
	g, _, root := newTestGate(t, map[string]string{".project/context/focus.json": strictRecord},
		WithLogger(logging.New(&logs, logging.LevelInfo)))

	err := g.Check(root, "/work/repo/src/a.go")
	var block *BlockError
	if !errors.As(err, &block) {
		t.Fatalf("Check() error = %v, want *BlockError", err)
	}
	if block.Reason != ReasonNoPlansDir {
		t.Errorf("Reason = %q", block.Reason)
	}
	msg := err.Error()
	for _, want := range []string{
		"⚠️ Workflow Enforcement (strict mode)\n\nNo `.project/plans/` directory found.\n\n",
		"  .project/plans/{feature-name}.md\n",
		"  - Change workflow_enforcement to \"remind\" in config.json\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("feedback missing %q:\n%s", want, msg)
		}
	}
	if !strings.Contains(logs.String(), "edit blocked") {
		t.Errorf("expected block to be logged, got %q", logs.String())
	}
}

func TestGate_CheckFailsOpen(t *testing.T) {
	fsys, root := testutil.SetupProject(t, map[string]string{".project/context/focus.json": strictRecord})
	denied := &readDeniedFs{Fs: fsys}
	g, err := New(denied, focus.NewStore(denied), config.Default().Gate)
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Check(root, "/work/repo/src/a.go"); err != nil {
		t.Errorf("Check() = %v, want nil when the record cannot be read", err)
	}
}

type readDeniedFs struct {
	afero.Fs
}

func (f *readDeniedFs) Open(name string) (afero.File, error) {
	return nil, testutil.ErrInjected
}
