package boxedit

import (
	"strings"

	"github.com/marquette/marquette/pkg/geom"
)

// Create normalizes a proposed rectangle from a click or drag and, if it is
// usable, appends a new empty box to the collection via an undoable command.
// The new box becomes the selection.
//
// A proposed rectangle smaller than the small-drag threshold in both
// dimensions is treated as a plain click: a default-size box is synthesized
// at the click point, vertically centered and clamped into the page. A
// deliberate drag is clamped into the page and padded up to the minimum box
// size, shifting away from the page edge when the minimum would not fit.
//
// Create reports false, pushing nothing, when the rectangle cannot yield a
// usable box (page too small, or a click too close to the right edge).
func (c *Collection) Create(page int, proposed geom.PixelRect, bounds geom.PixelSize, font FontSettings) (Box, bool) {
	if bounds.IsZero() || page < 0 {
		return Box{}, false
	}

	r := proposed.Normalize()
	if r.W < clickDragW && r.H < clickDragH {
		// Plain click: box starts at the click x and extends right,
		// vertically centered on the click y.
		x := geom.Clamp(r.X, 0, bounds.W-1)
		y := geom.Clamp(r.Y-DefaultBoxH/2, 0, bounds.H-DefaultBoxH)
		w := min(DefaultBoxW, bounds.W-x)
		if w < minUsableW {
			return Box{}, false
		}
		r = geom.PixelRect{X: x, Y: y, W: w, H: min(DefaultBoxH, bounds.H)}
	} else {
		// Deliberate drag: keep the drawn corners inside the page,
		// then enforce the minimum size.
		x0 := geom.Clamp(r.X, 0, bounds.W-1)
		y0 := geom.Clamp(r.Y, 0, bounds.H-1)
		x1 := geom.Clamp(r.Right(), 0, bounds.W)
		y1 := geom.Clamp(r.Bottom(), 0, bounds.H)
		r = geom.PixelRect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}.Normalize()

		w := min(max(MinBoxW, r.W), bounds.W)
		h := min(max(MinBoxH, r.H), bounds.H)
		r = geom.ClampOffset(geom.PixelRect{X: r.X, Y: r.Y, W: w, H: h}, bounds)
	}

	c.nextID++
	box := Box{
		ID:         c.nextID,
		Page:       page,
		Rect:       r,
		FontFamily: font.Family,
		FontSize:   font.Size,
	}
	c.history.PushAndApply(&insertCmd{c: c, index: len(c.boxes), box: box})
	return box, true
}

// CommitText records the text state of a box when editing focus is lost.
// Empty (after trimming) text deletes the box instead; unchanged text is a
// no-op. It reports whether a command was pushed.
func (c *Collection) CommitText(id ID, text string) bool {
	_, b := c.find(id)
	if b == nil {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return c.Delete(id)
	}
	if trimmed == b.Text {
		return false
	}
	before := b.Clone()
	after := before
	after.Text = trimmed
	c.history.PushAndApply(&updateCmd{c: c, before: before, after: after, label: "Update Box"})
	return true
}

// Restyle applies the given font settings to the currently selected box. It
// is a no-op when nothing is selected or nothing would change.
func (c *Collection) Restyle(font FontSettings) bool {
	if c.selected == 0 {
		return false
	}
	_, b := c.find(c.selected)
	if b == nil {
		return false
	}
	if b.FontFamily == font.Family && b.FontSize == font.Size {
		return false
	}
	before := b.Clone()
	after := before
	after.FontFamily = font.Family
	after.FontSize = font.Size
	c.history.PushAndApply(&updateCmd{c: c, before: before, after: after, label: "Change Font"})
	return true
}

// Delete removes a box via an undoable command. Undo reinserts the box at its
// original z-order position with all fields intact.
func (c *Collection) Delete(id ID) bool {
	idx, b := c.find(id)
	if b == nil {
		return false
	}
	c.history.PushAndApply(&deleteCmd{
		c:           c,
		index:       idx,
		box:         b.Clone(),
		wasSelected: c.selected == id,
	})
	return true
}
