// Package history provides a generic two-stack undo/redo log over stateful
// targets exposing capture/restore semantics. It is not specific to
// clustering: any target whose whole state can be snapshotted can be put
// under history.
package history

// Checkpointable is the capability required of a history target: capturing
// the full current state as an opaque snapshot, and restoring a previously
// captured snapshot while reporting the net change.
type Checkpointable[S, D any] interface {
	Capture() S
	Restore(snapshot S) D
}

// Log is a two-stack undo/redo history of whole-state snapshots bound to a
// single target. The undo stack holds post-mutation snapshots with the
// construction-time baseline at the bottom, so Undo restores the entry below
// the top rather than inverting the last push.
//
// Invariant: the undo stack (bottom to top) followed by the redo stack (top
// to bottom) is exactly the sequence of states visited since construction.
// Recording a new action discards the redo stack; the history never
// branches.
//
// Not safe for concurrent use.
type Log[S, D any] struct {
	target Checkpointable[S, D]
	undo   []S
	redo   []S
}

// New creates a Log bound to target and captures the current state as the
// baseline entry.
func New[S, D any](target Checkpointable[S, D]) *Log[S, D] {
	return &Log[S, D]{
		target: target,
		undo:   []S{target.Capture()},
	}
}

// Record captures the target's state and pushes it onto the undo stack,
// discarding any redoable entries. The caller must invoke Record exactly
// once per undoable mutation, immediately after applying it.
func (l *Log[S, D]) Record() {
	l.undo = append(l.undo, l.target.Capture())
	l.redo = nil
}

// Undo restores the state preceding the most recent recorded mutation and
// returns the target's change report. The second return is false when only
// the baseline remains; the target is untouched in that case.
func (l *Log[S, D]) Undo() (D, bool) {
	var zero D
	if len(l.undo) <= 1 {
		return zero, false
	}

	top := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, top)

	return l.target.Restore(l.undo[len(l.undo)-1]), true
}

// Redo re-applies the most recently undone mutation and returns the target's
// change report. The second return is false when there is nothing to redo.
func (l *Log[S, D]) Redo() (D, bool) {
	var zero D
	if len(l.redo) == 0 {
		return zero, false
	}

	top := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, top)

	return l.target.Restore(top), true
}

// UndoCount returns the number of recorded mutations that can be undone.
func (l *Log[S, D]) UndoCount() int {
	return len(l.undo) - 1
}

// RedoCount returns the number of undone mutations that can be re-applied.
func (l *Log[S, D]) RedoCount() int {
	return len(l.redo)
}
