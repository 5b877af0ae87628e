// Package annot converts edited text boxes into persisted free-text
// annotations.
//
// The serializer walks a box collection, skips boxes whose trimmed text is
// empty, maps each box's advisory font family to one of three portable font
// identifiers, and appends one borderless, unfilled, fully opaque black
// free-text annotation per remaining box to a document. Style attributes are
// applied best-effort: a style the document library rejects is recorded as a
// warning, never a save failure.
//
// The document itself is an external collaborator, abstracted by the Document
// and Annotation interfaces; pkg/pdffile provides the PDF-backed
// implementation.
package annot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marquette/marquette/pkg/boxedit"
	"github.com/marquette/marquette/pkg/geom"
)

// Annotation is one staged document annotation. Each style setter is
// independently fallible; a rejected style must not abort the save.
type Annotation interface {
	// SetBorderWidth sets the annotation border width in points; 0 removes
	// the border.
	SetBorderWidth(w float64) error

	// SetNoFill removes any interior fill color.
	SetNoFill() error

	// SetOpacity sets the annotation opacity in [0, 1].
	SetOpacity(alpha float64) error

	// SetAppearance sets the default text appearance: the mapped portable
	// font, the size in points, and black text.
	SetAppearance(font FontID, size int) error

	// SetRichContent attaches an XHTML rich-content body.
	SetRichContent(xhtml string) error
}

// Document is the slice of the external document library the serializer
// needs.
type Document interface {
	PageCount() int
	PageSizePoints(page int) (w, h float64, err error)

	// AddFreeText stages a free-text annotation on the given page. The
	// rectangle is in top-down document-point space.
	AddFreeText(page int, rect geom.PointRect, text string) (Annotation, error)
}

// Serializer writes a box collection into a document as free-text
// annotations.
type Serializer struct {
	// ZoomForPage returns the zoom factor the page was rendered at when
	// its boxes were placed, used to resolve pixel rectangles to
	// document points. A nil func or non-positive zoom falls back to 1.0.
	ZoomForPage func(page int) float64

	// Logger receives per-style warnings. Nil means os.Stdout.
	Logger io.Writer
}

// Result reports what a serialization pass produced.
type Result struct {
	Written  int      // annotations appended
	Skipped  int      // boxes excluded for empty/whitespace-only text
	Warnings []string // styles the document rejected, one entry per style
}

// Serialize appends one annotation per box with non-empty trimmed text.
// Whitespace-only boxes are silently excluded. A failure to stage an
// annotation aborts the pass with a single error; style failures only warn.
func (s *Serializer) Serialize(doc Document, boxes []boxedit.Box) (Result, error) {
	var res Result
	for _, b := range boxes {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			res.Skipped++
			continue
		}
		if b.Page < 0 || b.Page >= doc.PageCount() {
			return res, fmt.Errorf("box on page %d but document has %d pages", b.Page+1, doc.PageCount())
		}

		rect := b.Rect.ToPoints(s.zoomFor(b.Page))
		a, err := doc.AddFreeText(b.Page, rect, text)
		if err != nil {
			return res, fmt.Errorf("annotate page %d: %w", b.Page+1, err)
		}
		s.applyStyle(a, b, &res)
		res.Written++
	}

	for _, w := range res.Warnings {
		fmt.Fprintln(s.logger(), "Warning:", w)
	}
	return res, nil
}

// applyStyle normalizes the annotation appearance: no border, no fill, full
// opacity, black text in the mapped portable font at the box's size. Each
// style call that fails is recorded and skipped.
func (s *Serializer) applyStyle(a Annotation, b boxedit.Box, res *Result) {
	font := MapFamily(b.FontFamily)
	size := b.FontSize
	if size <= 0 {
		size = 12
	}

	steps := []struct {
		name  string
		apply func() error
	}{
		{"border", func() error { return a.SetBorderWidth(0) }},
		{"fill", a.SetNoFill},
		{"opacity", func() error { return a.SetOpacity(1) }},
		{"appearance", func() error { return a.SetAppearance(font, size) }},
		{"rich content", func() error {
			return a.SetRichContent(RichContent(strings.TrimSpace(b.Text), font, size))
		}},
	}
	for _, step := range steps {
		if err := step.apply(); err != nil {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("page %d: %s not applied: %v", b.Page+1, step.name, err))
		}
	}
}

func (s *Serializer) zoomFor(page int) float64 {
	if s.ZoomForPage != nil {
		if z := s.ZoomForPage(page); z > 0 {
			return z
		}
	}
	return 1.0
}

func (s *Serializer) logger() io.Writer {
	if s.Logger != nil {
		return s.Logger
	}
	return os.Stdout
}
