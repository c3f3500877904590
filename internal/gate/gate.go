// Package gate decides whether an edit may proceed under the project's
// workflow enforcement mode. In strict mode an edit needs a plan document
// that is recent or names the current epic.
package gate

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/logging"
	"github.com/Iron-Ham/mindcontext/internal/project"
)

// Block reasons.
const (
	ReasonNoPlansDir = "No `.project/plans/` directory found."
	ReasonNoPlans    = "No plan files found in `.project/plans/`."
)

// Verdict is the outcome of evaluating one edit.
type Verdict struct {
	Allowed bool
	// Mode is the resolved enforcement mode; empty when the edit was
	// allowed before enforcement was consulted.
	Mode string
	// Why names the rule that decided the verdict.
	Why string
	// Reason is the user-facing block reason when Allowed is false.
	Reason string
}

// BlockError is returned by Check when an edit is refused. Its message is
// the full feedback text for the user.
type BlockError struct {
	Reason string
}

// Error returns the feedback text.
func (e *BlockError) Error() string {
	return Feedback(e.Reason)
}

// Feedback formats the block message shown on standard error.
func Feedback(reason string) string {
	return fmt.Sprintf(`⚠️ Workflow Enforcement (strict mode)

%s

Before implementing, create a plan:
  .project/plans/{feature-name}.md

Or bypass workflow enforcement:
  - Say "just do it" or "bypass workflow"
  - Set workflow_bypass: true in focus.json
  - Change workflow_enforcement to "remind" in config.json
`, reason)
}

// Gate evaluates edits against a project's enforcement settings.
type Gate struct {
	fs          afero.Fs
	store       *focus.Store
	exempt      []glob.Glob
	defaultMode string
	planMaxAge  time.Duration
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the time source used for plan freshness.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// WithLogger sets the gate logger.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a Gate from cfg. It fails if an exemption pattern does not
// compile.
func New(fs afero.Fs, store *focus.Store, cfg config.GateConfig, opts ...Option) (*Gate, error) {
	g := &Gate{
		fs:          fs,
		store:       store,
		defaultMode: cfg.DefaultEnforcement,
		planMaxAge:  cfg.PlanMaxAge(),
		now:         time.Now,
		logger:      logging.NopLogger(),
	}
	if g.defaultMode == "" {
		g.defaultMode = focus.EnforcementRemind
	}
	if g.planMaxAge <= 0 {
		g.planMaxAge = 24 * time.Hour
	}

	for _, pattern := range cfg.ExemptPatterns {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exempt pattern %q: %w", pattern, err)
		}
		g.exempt = append(g.exempt, compiled)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Exempt reports whether path matches an exemption pattern. Paths are
// compared with forward slashes.
func (g *Gate) Exempt(path string) bool {
	if path == "" {
		return false
	}
	slashed := filepath.ToSlash(path)
	for _, pattern := range g.exempt {
		if pattern.Match(slashed) {
			return true
		}
	}
	return false
}

// Resolve returns the effective enforcement mode: the project override
// file wins over the focus record, which wins over the configured default.
func (g *Gate) Resolve(state *focus.State, override *config.ProjectFile) string {
	mode := state.Enforcement()
	if override != nil && override.WorkflowEnforcement != "" {
		mode = override.WorkflowEnforcement
	}
	if mode == "" {
		mode = g.defaultMode
	}
	return mode
}

// Evaluate decides whether editing path under root may proceed. An error
// means the decision could not be made.
func (g *Gate) Evaluate(root, path string) (Verdict, error) {
	if g.Exempt(path) {
		return Verdict{Allowed: true, Why: "exempt path"}, nil
	}
	if root == "" {
		return Verdict{Allowed: true, Why: "no project root"}, nil
	}

	state, err := g.store.Read(root)
	if err != nil {
		return Verdict{}, err
	}
	if state.Bypass() {
		return Verdict{Allowed: true, Why: "workflow bypass"}, nil
	}

	override, err := config.LoadProjectFile(g.fs, project.ConfigPath(root))
	if err != nil {
		g.logger.Warn("ignoring unreadable project config", "error", err.Error())
		override = nil
	}

	mode := g.Resolve(state, override)
	if mode != focus.EnforcementStrict {
		return Verdict{Allowed: true, Mode: mode, Why: "not strict"}, nil
	}

	return g.checkPlans(root, state.Focus().Epic)
}

func (g *Gate) checkPlans(root, epic string) (Verdict, error) {
	dir := project.PlansPath(root)
	block := func(reason string) (Verdict, error) {
		return Verdict{Mode: focus.EnforcementStrict, Why: "plan required", Reason: reason}, nil
	}

	ok, err := afero.DirExists(g.fs, dir)
	if err != nil {
		return Verdict{}, err
	}
	if !ok {
		return block(ReasonNoPlansDir)
	}

	infos, err := afero.ReadDir(g.fs, dir)
	if err != nil {
		return Verdict{}, err
	}

	needle := strings.ToLower(epic)
	now := g.now()
	plans := 0
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".md") {
			continue
		}
		plans++
		if needle != "" && strings.Contains(strings.ToLower(info.Name()), needle) {
			return Verdict{Allowed: true, Mode: focus.EnforcementStrict, Why: "plan matches epic"}, nil
		}
		if now.Sub(info.ModTime()) < g.planMaxAge {
			return Verdict{Allowed: true, Mode: focus.EnforcementStrict, Why: "recent plan"}, nil
		}
	}

	if plans == 0 {
		return block(ReasonNoPlans)
	}
	hint := ""
	if epic != "" {
		hint = fmt.Sprintf(" for epic %q", epic)
	}
	return block("No recent plan found" + hint + ".")
}

// Check evaluates the edit and returns a *BlockError when it is refused.
// Internal failures are logged and the edit is allowed.
func (g *Gate) Check(root, path string) error {
	v, err := g.Evaluate(root, path)
	if err != nil {
		g.logger.Warn("gate check failed, allowing edit", "path", path, "error", err.Error())
		return nil
	}
	if v.Allowed {
		g.logger.Debug("edit allowed", "path", path, "mode", v.Mode, "rule", v.Why)
		return nil
	}
	g.logger.Info("edit blocked", "path", path, "reason", v.Reason)
	return &BlockError{Reason: v.Reason}
}
