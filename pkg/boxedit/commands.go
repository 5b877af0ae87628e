package boxedit

// Command variants. Each variant holds plain before/after snapshots (or a
// collection index plus snapshot for insert/delete) and references its target
// box by ID. Apply and Revert are total: a missing target is a no-op.

// insertCmd appends a new box. Revert removes it again and clears the
// selection if the box was selected.
type insertCmd struct {
	c     *Collection
	index int
	box   Box
}

func (cmd *insertCmd) Apply() {
	if _, b := cmd.c.find(cmd.box.ID); b != nil {
		return
	}
	cmd.c.insertAt(cmd.index, cmd.box)
	cmd.c.selected = cmd.box.ID
}

func (cmd *insertCmd) Revert() {
	cmd.c.removeID(cmd.box.ID)
}

func (cmd *insertCmd) Label() string { return "Add Box" }

// deleteCmd removes a box. Revert reinserts the snapshot at the recorded
// index, preserving z-order, and restores the selection if the box was
// selected when it was deleted.
type deleteCmd struct {
	c           *Collection
	index       int
	box         Box
	wasSelected bool
}

func (cmd *deleteCmd) Apply() {
	cmd.c.removeID(cmd.box.ID)
}

func (cmd *deleteCmd) Revert() {
	if _, b := cmd.c.find(cmd.box.ID); b != nil {
		return
	}
	cmd.c.insertAt(cmd.index, cmd.box)
	if cmd.wasSelected {
		cmd.c.selected = cmd.box.ID
	}
}

func (cmd *deleteCmd) Label() string { return "Delete Box" }

// updateCmd swaps a box between two full snapshots.
type updateCmd struct {
	c      *Collection
	before Box
	after  Box
	label  string
}

func (cmd *updateCmd) Apply()  { cmd.set(cmd.after) }
func (cmd *updateCmd) Revert() { cmd.set(cmd.before) }

func (cmd *updateCmd) set(snap Box) {
	if _, b := cmd.c.find(snap.ID); b != nil {
		*b = snap.Clone()
		b.Rect = b.Rect.Normalize()
	}
}

func (cmd *updateCmd) Label() string { return cmd.label }
