// Package boxedit implements the in-memory model of movable, resizable text
// boxes overlaid on rendered document pages, and the undoable operations that
// edit them.
//
// A Collection owns the ordered set of live boxes for one open document.
// Every edit operation constructs a command capturing before/after snapshots
// and routes it through the collection's undo stack, so any sequence of edits
// can be undone and redone exactly. Commands reference boxes by stable ID,
// never by pointer; a command whose target box no longer exists degrades to a
// no-op instead of corrupting state.
//
// All geometry is in rendered-page pixel space (see package geom). Clamping
// always uses the page pixel bounds supplied by the caller, captured at the
// start of the interaction that produced the geometry.
package boxedit

import "github.com/marquette/marquette/pkg/geom"

// Sizing rules for box creation and resizing, in pixels.
const (
	// MinBoxW and MinBoxH are the smallest committed box dimensions.
	MinBoxW = 60
	MinBoxH = 28

	// DefaultBoxW and DefaultBoxH are the dimensions of a box spawned by a
	// plain click, anchored at the click point and vertically centered.
	DefaultBoxW = 360
	DefaultBoxH = 30

	// A drawn rectangle smaller than this in both dimensions is treated as
	// a plain click rather than a deliberate drag.
	clickDragW = 40
	clickDragH = 20

	// Click-spawned boxes that cannot reach this width against the page
	// edge are rejected outright.
	minUsableW = 40
)

// ID identifies a box within its Collection for the box's whole lifetime.
// IDs are never reused within a session, so commands that outlive a box's
// removal stay well defined.
type ID int

// Box is one placed text region bound to a single page. It is a plain value
// type: commands snapshot boxes by value, so later edits to the live box can
// never corrupt previously captured state.
type Box struct {
	ID   ID
	Page int // zero-based page index, fixed for the box's lifetime

	// Rect is the box geometry in rendered-page pixel space. It is
	// normalized (non-negative extent) on every mutation.
	Rect geom.PixelRect

	// Text is the box content. The empty string is a valid transient
	// state, but a box whose trimmed text is empty never survives a
	// commit.
	Text string

	// FontFamily is advisory; it is mapped to a portable font identifier
	// when the box is persisted.
	FontFamily string
	FontSize   int // points
}

// Clone returns a value copy of b.
func (b Box) Clone() Box { return b }

// Equal reports whether two boxes agree in every field.
func (b Box) Equal(o Box) bool { return b == o }

// FontSettings is the font state carried by the toolbar: the family and size
// applied to newly created boxes and to the selected box on restyle.
type FontSettings struct {
	Family string
	Size   int
}
