package boxedit

import "github.com/marquette/marquette/pkg/geom"

// GestureKind distinguishes the two drag gestures a box supports.
type GestureKind int

const (
	// GestureMove drags the whole box by its border.
	GestureMove GestureKind = iota + 1

	// GestureResize drags the bottom-right handle, keeping the top-left
	// corner anchored.
	GestureResize
)

// Gesture tracks one in-progress move or resize drag. Intermediate updates
// mutate the live box directly so the interactive layer can repaint; exactly
// one command is pushed when the gesture ends. The page pixel bounds are
// captured when the gesture begins and used for every clamp until it ends;
// zoom changes are not permitted while a gesture is active.
type Gesture struct {
	c      *Collection
	id     ID
	kind   GestureKind
	start  Box
	bounds geom.PixelSize
}

// BeginMove starts a move gesture on the given box. The box becomes the
// selection. It reports false if the box does not exist or the bounds are
// unusable.
func (c *Collection) BeginMove(id ID, bounds geom.PixelSize) (*Gesture, bool) {
	return c.beginGesture(id, GestureMove, bounds)
}

// BeginResize starts a resize gesture on the given box. The box becomes the
// selection. It reports false if the box does not exist or the bounds are
// unusable.
func (c *Collection) BeginResize(id ID, bounds geom.PixelSize) (*Gesture, bool) {
	return c.beginGesture(id, GestureResize, bounds)
}

func (c *Collection) beginGesture(id ID, kind GestureKind, bounds geom.PixelSize) (*Gesture, bool) {
	_, b := c.find(id)
	if b == nil || bounds.IsZero() {
		return nil, false
	}
	c.selected = id
	return &Gesture{
		c:      c,
		id:     id,
		kind:   kind,
		start:  b.Clone(),
		bounds: bounds,
	}, true
}

// Kind returns which gesture this is.
func (g *Gesture) Kind() GestureKind { return g.kind }

// Update applies the drag delta, in pixels, relative to the gesture start.
// The live box is re-clamped against the bounds captured at gesture start:
// moves keep the box fully inside the page, resizes keep the top-left anchor
// and never shrink below the minimum box size or grow past the page edge.
func (g *Gesture) Update(dx, dy int) {
	_, b := g.c.find(g.id)
	if b == nil {
		return
	}
	switch g.kind {
	case GestureMove:
		r := g.start.Rect
		r.X += dx
		r.Y += dy
		b.Rect = geom.ClampOffset(r, g.bounds)
	case GestureResize:
		w := max(MinBoxW, g.start.Rect.W+dx)
		h := max(MinBoxH, g.start.Rect.H+dy)
		w = min(w, g.bounds.W-g.start.Rect.X)
		h = min(h, g.bounds.H-g.start.Rect.Y)
		b.Rect = geom.PixelRect{X: g.start.Rect.X, Y: g.start.Rect.Y, W: w, H: h}
	}
}

// End commits the gesture, pushing a single command capturing the pre-drag
// and post-drag snapshots. A gesture that changed nothing pushes no command.
// It reports whether a command was pushed.
func (g *Gesture) End() bool {
	cur, ok := g.c.Get(g.id)
	if !ok || cur.Equal(g.start) {
		return false
	}
	g.c.history.PushAndApply(&updateCmd{c: g.c, before: g.start, after: cur, label: g.label()})
	return true
}

// Cancel restores the box to its pre-gesture state without touching the undo
// history.
func (g *Gesture) Cancel() {
	_, b := g.c.find(g.id)
	if b == nil {
		return
	}
	*b = g.start.Clone()
}

func (g *Gesture) label() string {
	if g.kind == GestureResize {
		return "Resize Box"
	}
	return "Move Box"
}
