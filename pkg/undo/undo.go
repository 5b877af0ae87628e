// Package undo implements a linear undo/redo log of reversible commands.
//
// A Stack owns two ordered command lists, the applied history and the
// reverted history. Pushing a new command after an undo discards the reverted
// history, giving the standard linear-undo semantics. The stack lives for one
// document session and is never persisted.
package undo

// A Command is one reversible state change. Apply and Revert must be total:
// call sites construct commands only over already-validated state, and a
// command whose target has since disappeared treats the call as a no-op
// rather than failing.
type Command interface {
	// Apply performs the change. It is called once when the command is
	// pushed and again on every redo.
	Apply()

	// Revert restores the exact observable state from before Apply.
	Revert()

	// Label is a short human-readable description, e.g. "Delete Box".
	Label() string
}

// Stack is a linear undo/redo history. The zero value is an empty stack
// ready for use.
type Stack struct {
	applied  []Command
	reverted []Command
}

// PushAndApply executes cmd immediately, appends it to the applied history,
// and invalidates any previously undone commands.
func (s *Stack) PushAndApply(cmd Command) {
	cmd.Apply()
	s.applied = append(s.applied, cmd)
	s.reverted = s.reverted[:0]
}

// Undo reverts the most recent applied command and moves it to the reverted
// history. It reports whether a command was undone.
func (s *Stack) Undo() bool {
	n := len(s.applied)
	if n == 0 {
		return false
	}
	cmd := s.applied[n-1]
	s.applied = s.applied[:n-1]
	cmd.Revert()
	s.reverted = append(s.reverted, cmd)
	return true
}

// Redo re-applies the most recent reverted command and moves it back to the
// applied history. It reports whether a command was redone.
func (s *Stack) Redo() bool {
	n := len(s.reverted)
	if n == 0 {
		return false
	}
	cmd := s.reverted[n-1]
	s.reverted = s.reverted[:n-1]
	cmd.Apply()
	s.applied = append(s.applied, cmd)
	return true
}

// CanUndo reports whether the applied history is non-empty.
func (s *Stack) CanUndo() bool { return len(s.applied) > 0 }

// CanRedo reports whether the reverted history is non-empty.
func (s *Stack) CanRedo() bool { return len(s.reverted) > 0 }

// Depth returns the number of commands in the applied history.
func (s *Stack) Depth() int { return len(s.applied) }

// UndoLabel returns the label of the command Undo would revert, or "" when
// there is nothing to undo.
func (s *Stack) UndoLabel() string {
	if n := len(s.applied); n > 0 {
		return s.applied[n-1].Label()
	}
	return ""
}

// RedoLabel returns the label of the command Redo would re-apply, or "" when
// there is nothing to redo.
func (s *Stack) RedoLabel() string {
	if n := len(s.reverted); n > 0 {
		return s.reverted[n-1].Label()
	}
	return ""
}
