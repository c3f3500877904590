// Package logging provides structured logging for mindcontext.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation. Hook invocations are short-lived processes whose
// stdout is the protocol channel, so logs never go to stdout: they go to
// stderr or to a size-rotated file.
//
// # Basic Usage
//
//	logger := logging.New(os.Stderr, "WARN")
//	logger.Warn("focus record malformed", "path", path)
//
// Write to a rotated file instead:
//
//	logger, err := logging.NewFileLogger("/tmp/mindcontext.log", "DEBUG", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	hookLogger := logger.WithHook("SessionStart").WithSession("abc123").WithRoot("/repo")
//	hookLogger.Info("session registered", "focus", "epic:auth/task:3")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"session registered","hook":"SessionStart","session_id":"abc123","project_root":"/repo","focus":"epic:auth/task:3"}
//
// # Log Rotation
//
// Rotated files are named mindcontext.log.1, mindcontext.log.2, etc., where
// .1 is the most recent backup.
//
// # Testing
//
// Use [NopLogger] to discard output, or [New] with a bytes.Buffer to assert
// on entries.
//
// # Configuration
//
//	logging:
//	  level: warn
//	  file: ""
//	  max_size_mb: 10
//	  max_backups: 3
package logging
