package hook

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/config"
	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/focus"
	"github.com/Iron-Ham/mindcontext/internal/gate"
	"github.com/Iron-Ham/mindcontext/internal/logging"
	"github.com/Iron-Ham/mindcontext/internal/project"
	"github.com/Iron-Ham/mindcontext/internal/render"
	"github.com/Iron-Ham/mindcontext/internal/session"
)

// Handler runs hook events against the project containing the payload's
// working directory.
type Handler struct {
	fs       afero.Fs
	cfg      *config.Config
	locator  *project.Locator
	docs     *project.Documents
	store    *focus.Store
	registry *session.Registry
	renderer *render.Renderer
	gate     *gate.Gate
	getwd    func() (string, error)
	logger   *logging.Logger
}

type options struct {
	now    func() time.Time
	getwd  func() (string, error)
	logger *logging.Logger
}

// Option configures a Handler.
type Option func(*options)

// WithClock sets the time source for timestamps and plan freshness.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithWorkingDir sets the fallback used when the payload has no cwd.
func WithWorkingDir(getwd func() (string, error)) Option {
	return func(o *options) {
		o.getwd = getwd
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewHandler wires the store, registry, renderer and gate from cfg.
func NewHandler(fs afero.Fs, cfg *config.Config, opts ...Option) (*Handler, error) {
	o := options{now: time.Now, getwd: os.Getwd, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	store := focus.NewStore(fs, focus.WithClock(o.now), focus.WithLogger(o.logger))
	g, err := gate.New(fs, store, cfg.Gate, gate.WithClock(o.now), gate.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	return &Handler{
		fs:      fs,
		cfg:     cfg,
		locator: project.NewLocator(fs, cfg.Project.Manifests),
		docs:    project.NewDocuments(fs),
		store:   store,
		registry: session.NewRegistry(store,
			session.WithLogger(o.logger),
			session.WithWindows(cfg.Sessions.StaleAfter(), cfg.Sessions.ActiveWindow()),
		),
		renderer: render.New(render.WithDecisionCount(cfg.Context.DecisionCount)),
		gate:     g,
		getwd:    o.getwd,
		logger:   o.logger,
	}, nil
}

// Store returns the handler's focus store.
func (h *Handler) Store() *focus.Store {
	return h.store
}

// Run reads the payload from stdin, dispatches event and writes any output
// to stdout. A blocked edit is returned as a *gate.BlockError.
func (h *Handler) Run(event string, stdin io.Reader, stdout io.Writer) error {
	in := ReadInput(stdin, h.getwd)

	var (
		out *Output
		err error
	)
	switch event {
	case EventSessionStart:
		out, err = h.SessionStart(in)
	case EventSessionEnd:
		out, err = h.SessionEnd(in)
	case EventUserPromptSubmit:
		err = h.Activity(in)
	case EventPreToolUse:
		err = h.PreEdit(in)
	default:
		return fmt.Errorf("unknown hook event %q", event)
	}
	if err != nil {
		return err
	}
	return WriteOutput(stdout, out)
}

// locate resolves the project root for cwd. ok is false when cwd is not
// inside a project.
func (h *Handler) locate(cwd string) (string, bool, error) {
	root, err := h.locator.Find(cwd)
	if err != nil {
		if errors.Is(err, errors.ErrNoProjectRoot) {
			return "", false, nil
		}
		return "", false, err
	}
	return root.Path, true, nil
}

// SessionStart evicts stale sessions, registers this one and renders the
// context to inject. The output is nil outside a project.
func (h *Handler) SessionStart(in Input) (*Output, error) {
	log := h.logger.WithHook(EventSessionStart).WithSession(in.SessionID)

	root, ok, err := h.locate(in.CWD)
	if err != nil || !ok {
		return nil, err
	}
	log = log.WithRoot(root)

	if _, err := h.registry.Cleanup(root, 0); err != nil {
		return nil, err
	}

	current, err := h.store.Read(root)
	if err != nil {
		return nil, err
	}
	state, err := h.registry.Register(root, in.SessionID, in.CWD, current.Focus())
	if err != nil {
		return nil, err
	}
	others := h.registry.ListOthers(state, in.SessionID, in.CWD)

	override := h.projectFile(root, log)
	level := h.level(state, override)

	input, err := render.Load(h.docs, root, level, state)
	if err != nil {
		log.Warn("failed to read context documents", "error", err.Error())
		input = render.Input{State: state}
	}
	input.Enforcement = h.gate.Resolve(state, override)

	text := h.renderer.Render(level, input) + session.WarningText(others)
	log.Debug("session context rendered", "level", level, "others", len(others))
	return NewOutput(EventSessionStart, text), nil
}

// SessionEnd re-dates the last session summary and removes this session.
// Nothing is written when the project has no focus record.
func (h *Handler) SessionEnd(in Input) (*Output, error) {
	log := h.logger.WithHook(EventSessionEnd).WithSession(in.SessionID)

	root, ok, err := h.locate(in.CWD)
	if err != nil || !ok {
		return nil, err
	}

	state, status, err := h.store.ReadDetailed(root)
	if err != nil {
		return nil, err
	}
	if status != focus.StatusOK {
		log.Debug("no focus record, skipping session end", "status", status.String())
		return nil, nil
	}

	if ss := state.SessionSummary; ss != nil && len(ss.WorkDone) > 0 {
		if _, err := h.registry.SaveSummary(root, ss.WorkDone); err != nil {
			return nil, err
		}
	}
	if _, _, err := h.registry.Remove(root, in.SessionID); err != nil {
		return nil, err
	}

	log.Debug("session ended", "reason", in.Reason)
	return NewOutput(EventSessionEnd, ""), nil
}

// Activity refreshes this session's last_active time.
func (h *Handler) Activity(in Input) error {
	root, ok, err := h.locate(in.CWD)
	if err != nil || !ok {
		return err
	}
	_, err = h.registry.Touch(root, in.SessionID)
	return err
}

// PreEdit runs the workflow gate for the edited file. Payloads without a
// file path are allowed, as are failures other than a block.
func (h *Handler) PreEdit(in Input) error {
	log := h.logger.WithHook(EventPreToolUse).WithSession(in.SessionID)
	if in.FilePath == "" {
		log.Debug("no file path in payload, allowing edit")
		return nil
	}

	root, _, err := h.locate(in.CWD)
	if err != nil {
		log.Warn("project lookup failed, allowing edit", "error", err.Error())
		return nil
	}
	return h.gate.Check(root, in.FilePath)
}

func (h *Handler) projectFile(root string, log *logging.Logger) *config.ProjectFile {
	pf, err := config.LoadProjectFile(h.fs, project.ConfigPath(root))
	if err != nil {
		log.Warn("ignoring unreadable project config", "error", err.Error())
		return nil
	}
	return pf
}

// level picks the context tier: the record's context_level, then the
// project override file, then the configured default.
func (h *Handler) level(state *focus.State, override *config.ProjectFile) string {
	var projectLevel string
	if override != nil {
		projectLevel = override.ContextLevel
	}
	return render.ResolveLevel(state.ContextLevel, projectLevel, h.cfg.Context.DefaultLevel)
}
