package focus

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/mindcontext/internal/errors"
	"github.com/Iron-Ham/mindcontext/internal/logging"
	"github.com/Iron-Ham/mindcontext/internal/project"
)

// Status describes what a read found on disk.
type Status int

const (
	// StatusOK means the record was read and parsed.
	StatusOK Status = iota
	// StatusMissing means no record file exists yet.
	StatusMissing
	// StatusMalformed means the file exists but could not be parsed.
	StatusMalformed
	// StatusNoRoot means no project root was supplied.
	StatusNoRoot
)

// String returns a short label for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusMalformed:
		return "malformed"
	case StatusNoRoot:
		return "no-root"
	default:
		return "unknown"
	}
}

// Version identifies the exact bytes of a record file. The empty Version
// means the file did not exist.
type Version string

// Store reads and writes the focus record under a project root. It holds no
// record state between calls; every operation goes back to the filesystem.
type Store struct {
	fs     afero.Fs
	now    func() time.Time
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for last_updated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for recovered read failures.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store over fs.
func NewStore(fs afero.Fs, opts ...Option) *Store {
	s := &Store{
		fs:     fs,
		now:    time.Now,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the filesystem the store operates on.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Path returns the record path for root.
func (s *Store) Path(root string) string {
	return project.FocusPath(root)
}

// ReadDetailed loads the record and reports what was found. Missing and
// malformed files yield an empty record with a nil error; other I/O errors
// are returned.
func (s *Store) ReadDetailed(root string) (*State, Status, error) {
	state, status, _, err := s.readRaw(root)
	return state, status, err
}

// Read loads the record, degrading missing and malformed files to an empty
// record. A malformed file is logged at WARN.
func (s *Store) Read(root string) (*State, error) {
	state, _, err := s.ReadDetailed(root)
	return state, err
}

// ReadVersioned loads the record together with the Version of the bytes it
// was parsed from. A malformed file still carries a non-empty Version.
func (s *Store) ReadVersioned(root string) (*State, Version, error) {
	state, _, version, err := s.readRaw(root)
	return state, version, err
}

func (s *Store) readRaw(root string) (*State, Status, Version, error) {
	if root == "" {
		return New(), StatusNoRoot, "", nil
	}

	path := s.Path(root)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), StatusMissing, "", nil
		}
		return nil, StatusOK, "", errors.NewStoreError("read", path, err)
	}

	version := versionOf(data)
	state, err := Decode(data)
	if err != nil {
		s.logger.Warn("focus record malformed, using empty record",
			"path", path,
			"error", err.Error(),
		)
		return New(), StatusMalformed, version, nil
	}
	return state, StatusOK, version, nil
}

// Write stamps last_updated on state and persists it atomically. The stamp
// never moves backwards relative to the value state already carries.
func (s *Store) Write(root string, state *State) error {
	_, err := s.write(root, state)
	return err
}

func (s *Store) write(root string, state *State) (Version, error) {
	if root == "" {
		return "", errors.NewStoreError("write", "", errors.ErrNoProjectRoot)
	}
	if state == nil {
		state = New()
	}

	ts := s.now().UTC().Truncate(time.Millisecond)
	if ts.Before(state.LastUpdated) {
		ts = state.LastUpdated
	}
	state.LastUpdated = ts

	path := s.Path(root)
	data, err := Encode(state)
	if err != nil {
		return "", errors.NewStoreError("encode", path, err).WithSeverity(errors.SeverityCritical)
	}
	if err := atomicWriteFile(s.fs, path, data, 0644); err != nil {
		return "", errors.NewStoreError("write", path, err)
	}
	return versionOf(data), nil
}

// Update reads the record, applies patch and writes the result.
func (s *Store) Update(root string, patch Patch) (*State, error) {
	state, _, err := s.UpdateFunc(root, func(*State) (Patch, bool) {
		return patch, true
	})
	return state, err
}

// UpdateFunc reads the record and passes a copy to fn. When fn returns
// true its patch is applied and the result written; when it returns false
// nothing is written and the record as read is returned.
func (s *Store) UpdateFunc(root string, fn func(*State) (Patch, bool)) (*State, bool, error) {
	if root == "" {
		return nil, false, errors.NewStoreError("update", "", errors.ErrNoProjectRoot)
	}

	current, err := s.Read(root)
	if err != nil {
		return nil, false, err
	}

	patch, ok := fn(current.Clone())
	if !ok {
		return current, false, nil
	}

	patch.Apply(current)
	if err := s.Write(root, current); err != nil {
		return nil, false, err
	}
	return current, true, nil
}

// Touch rewrites the record with only last_updated changed.
func (s *Store) Touch(root string) (*State, error) {
	return s.Update(root, Patch{})
}

// WriteIfVersion writes state only if the file still holds the bytes that
// produced expected. It returns ErrStateConflict otherwise. The check and
// the rename are not atomic with respect to other processes; it narrows
// the lost-update window rather than closing it.
func (s *Store) WriteIfVersion(root string, state *State, expected Version) (Version, error) {
	if root == "" {
		return "", errors.NewStoreError("write", "", errors.ErrNoProjectRoot)
	}

	path := s.Path(root)
	data, err := afero.ReadFile(s.fs, path)
	var current Version
	switch {
	case err == nil:
		current = versionOf(data)
	case os.IsNotExist(err):
		current = ""
	default:
		return "", errors.NewStoreError("read", path, err)
	}

	if current != expected {
		return "", errors.NewStoreError("write", path, errors.ErrStateConflict).WithRetryable(true)
	}
	return s.write(root, state)
}

func versionOf(data []byte) Version {
	sum := sha256.Sum256(data)
	return Version(hex.EncodeToString(sum[:]))
}
