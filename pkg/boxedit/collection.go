package boxedit

import "github.com/marquette/marquette/pkg/undo"

// Collection is the ordered set of live boxes for one open document. Order is
// z-order, which is insertion order. At most one box is selected at a time.
//
// A Collection and its undo stack are owned by a single document session and
// must only be used from one goroutine.
type Collection struct {
	boxes    []*Box
	nextID   ID
	selected ID // 0 while nothing is selected
	history  *undo.Stack
}

// NewCollection returns an empty collection with a fresh undo stack.
func NewCollection() *Collection {
	return &Collection{history: &undo.Stack{}}
}

// History returns the collection's undo stack.
func (c *Collection) History() *undo.Stack { return c.history }

// Len returns the number of live boxes.
func (c *Collection) Len() int { return len(c.boxes) }

// Boxes returns value snapshots of all live boxes in z-order.
func (c *Collection) Boxes() []Box {
	out := make([]Box, len(c.boxes))
	for i, b := range c.boxes {
		out[i] = *b
	}
	return out
}

// Get returns a snapshot of the box with the given ID.
func (c *Collection) Get(id ID) (Box, bool) {
	if _, b := c.find(id); b != nil {
		return *b, true
	}
	return Box{}, false
}

// Select marks the box with the given ID as the current selection. It reports
// whether the box exists.
func (c *Collection) Select(id ID) bool {
	if _, b := c.find(id); b == nil {
		return false
	}
	c.selected = id
	return true
}

// ClearSelection deselects any selected box.
func (c *Collection) ClearSelection() { c.selected = 0 }

// Selected returns a snapshot of the currently selected box, if any.
func (c *Collection) Selected() (Box, bool) {
	if c.selected == 0 {
		return Box{}, false
	}
	return c.Get(c.selected)
}

// Undo reverts the most recent committed operation.
func (c *Collection) Undo() bool { return c.history.Undo() }

// Redo re-applies the most recently undone operation.
func (c *Collection) Redo() bool { return c.history.Redo() }

func (c *Collection) find(id ID) (int, *Box) {
	for i, b := range c.boxes {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

// insertAt places a copy of b at index idx, clamped into the valid range so
// reverting a delete after unrelated removals still succeeds.
func (c *Collection) insertAt(idx int, b Box) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(c.boxes) {
		idx = len(c.boxes)
	}
	nb := b.Clone()
	c.boxes = append(c.boxes, nil)
	copy(c.boxes[idx+1:], c.boxes[idx:])
	c.boxes[idx] = &nb
}

// removeID deletes the box with the given ID, returning its former index.
func (c *Collection) removeID(id ID) (int, bool) {
	idx, b := c.find(id)
	if b == nil {
		return -1, false
	}
	c.boxes = append(c.boxes[:idx], c.boxes[idx+1:]...)
	if c.selected == id {
		c.selected = 0
	}
	return idx, true
}
