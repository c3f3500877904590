// Package focus persists the per-project focus record: current focus, key
// decisions, next tasks, the last session summary, the live session registry
// and the workflow knobs read by the pre-edit gate.
//
// # Storage
//
// The record is a single JSON document at .project/context/focus.json under
// the project root. [Store] reads and writes it through an injected
// afero.Fs. Every write goes to a uniquely named temporary file in the same
// directory and is renamed into place, so readers see either the previous
// record or the new one and never a partial file.
//
// # Consistency
//
// Writes are atomic per file, not per read-modify-write cycle. Two processes
// that read the same record and each call [Store.Update] race: the second
// write replaces every top-level field the first one wrote. [Store.ReadVersioned]
// and [Store.WriteIfVersion] offer an opt-in conditional write for callers
// that need to detect that.
//
// # Ordering
//
// key_decisions and active_sessions keep insertion order, and top-level
// fields this package does not model are carried through unchanged after
// the known fields.
package focus
