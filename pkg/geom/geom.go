// Package geom provides the rectangle types used by the annotation editor and
// the transform between rendered-page pixel space and document-point space.
//
// Pixel space is the integer coordinate system of a page rendered at some zoom
// factor, with the origin at the page's top-left corner. Document-point space
// is the resolution-independent coordinate system of the underlying page; the
// two are related by the zoom factor the page was rendered at.
package geom

// PixelRect is an axis-aligned rectangle in rendered-page pixel space.
type PixelRect struct {
	X, Y, W, H int
}

// Right returns the x coordinate of the right edge (X+W).
func (r PixelRect) Right() int { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge (Y+H).
func (r PixelRect) Bottom() int { return r.Y + r.H }

// Normalize returns r with non-negative width and height, flipping the
// rectangle around the dragged-past edge where necessary.
func (r PixelRect) Normalize() PixelRect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// ToPoints maps a pixel rectangle to document-point space by dividing each
// edge coordinate by the zoom factor the page was rendered at. The transform
// is pure and one-directional; zoom must be positive, which the editing layer
// guarantees by clamping zoom before any rectangle reaches this function.
func (r PixelRect) ToPoints(zoom float64) PointRect {
	return PointRect{
		X0: float64(r.X) / zoom,
		Y0: float64(r.Y) / zoom,
		X1: float64(r.Right()) / zoom,
		Y1: float64(r.Bottom()) / zoom,
	}
}

// PixelSize is the pixel dimensions of a rendered page.
type PixelSize struct {
	W, H int
}

// IsZero reports whether the size describes no usable page area.
func (s PixelSize) IsZero() bool { return s.W <= 0 || s.H <= 0 }

// PointRect is an axis-aligned rectangle in document-point space, top-down:
// (X0, Y0) is the top-left corner and (X1, Y1) the bottom-right corner.
type PointRect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the rectangle.
func (r PointRect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r PointRect) Height() float64 { return r.Y1 - r.Y0 }

// ClampOffset moves r so it lies fully within a page of the given size
// without changing its dimensions. Rectangles larger than the page are pinned
// to the page's top-left corner.
func ClampOffset(r PixelRect, page PixelSize) PixelRect {
	r.X = Clamp(r.X, 0, page.W-r.W)
	r.Y = Clamp(r.Y, 0, page.H-r.H)
	return r
}

// Clamp restricts v to the range [lo, hi]. An empty range collapses to lo.
func Clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
