// Package session ties the editing pieces together: one open PDF, its page
// renderer, the live box collection with undo history, and the zoom state.
// The interactive surface and the command-line tool both drive a Session.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/marquette/marquette/pkg/annot"
	"github.com/marquette/marquette/pkg/boxedit"
	"github.com/marquette/marquette/pkg/boxfile"
	"github.com/marquette/marquette/pkg/geom"
	"github.com/marquette/marquette/pkg/pdffile"
	"github.com/marquette/marquette/pkg/render"
)

// Config holds session settings.
type Config struct {
	MinZoom     float64
	MaxZoom     float64
	DefaultZoom float64
	FontFamily  string // font for newly created boxes
	FontSize    int
	Logger      io.Writer
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		MinZoom:     0.25,
		MaxZoom:     4.0,
		DefaultZoom: 2.0,
		FontFamily:  "Arial",
		FontSize:    12,
		Logger:      os.Stdout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom <= 0 {
		c.MaxZoom = d.MaxZoom
	}
	if c.DefaultZoom <= 0 {
		c.DefaultZoom = d.DefaultZoom
	}
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// Session is one open document being edited. Not safe for concurrent use.
type Session struct {
	cfg      Config
	path     string
	file     *pdffile.File
	renderer render.Renderer
	boxes    *boxedit.Collection

	zoom   float64
	bounds map[int]geom.PixelSize // pixel bounds per rendered page
	zoomAt map[int]float64        // zoom each page was last rendered at
}

// Open opens the PDF at path for editing. A nil renderer gets a size-only
// renderer backed by the document's page sizes, which is what headless use
// wants.
func Open(path string, r render.Renderer, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	f, err := pdffile.Open(path)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = &render.PointBounds{Pages: f.PageCount(), Size: f.PageSizePoints}
	}
	s := &Session{
		cfg:      cfg,
		path:     path,
		file:     f,
		renderer: r,
		boxes:    boxedit.NewCollection(),
		bounds:   make(map[int]geom.PixelSize),
		zoomAt:   make(map[int]float64),
	}
	s.zoom = s.clampZoom(cfg.DefaultZoom)
	return s, nil
}

// Path returns the path of the open document.
func (s *Session) Path() string { return s.path }

// PageCount returns the document's page count.
func (s *Session) PageCount() int { return s.file.PageCount() }

// Boxes returns the live box collection.
func (s *Session) Boxes() *boxedit.Collection { return s.boxes }

// Zoom returns the current zoom factor.
func (s *Session) Zoom() float64 { return s.zoom }

// SetZoom changes the zoom factor, clamped into the configured range, and
// returns the factor actually applied.
func (s *Session) SetZoom(z float64) float64 {
	s.zoom = s.clampZoom(z)
	return s.zoom
}

func (s *Session) clampZoom(z float64) float64 {
	if z < s.cfg.MinZoom {
		return s.cfg.MinZoom
	}
	if z > s.cfg.MaxZoom {
		return s.cfg.MaxZoom
	}
	return z
}

// RenderPage renders a page at the current zoom and records the pixel bounds
// that subsequent box edits on that page clamp against.
func (s *Session) RenderPage(page int) (render.Page, error) {
	p, err := s.renderer.RenderPage(page, s.zoom)
	if err != nil {
		return render.Page{}, err
	}
	s.bounds[page] = p.Bounds
	s.zoomAt[page] = s.zoom
	return p, nil
}

// pageBounds returns the page's pixel bounds, rendering it first if it has
// not been seen at any zoom yet.
func (s *Session) pageBounds(page int) (geom.PixelSize, error) {
	if b, ok := s.bounds[page]; ok {
		return b, nil
	}
	p, err := s.RenderPage(page)
	if err != nil {
		return geom.PixelSize{}, err
	}
	return p.Bounds, nil
}

// zoomForPage returns the zoom a page's boxes were measured at.
func (s *Session) zoomForPage(page int) float64 {
	if z, ok := s.zoomAt[page]; ok {
		return z
	}
	return s.zoom
}

// CreateBox creates a box on a page from a click or drag rectangle. It
// reports false when the rectangle cannot yield a usable box.
func (s *Session) CreateBox(page int, proposed geom.PixelRect) (boxedit.Box, bool, error) {
	if page < 0 || page >= s.file.PageCount() {
		return boxedit.Box{}, false, fmt.Errorf("page %d out of range [0, %d)", page, s.file.PageCount())
	}
	bounds, err := s.pageBounds(page)
	if err != nil {
		return boxedit.Box{}, false, err
	}
	font := boxedit.FontSettings{Family: s.cfg.FontFamily, Size: s.cfg.FontSize}
	box, ok := s.boxes.Create(page, proposed, bounds, font)
	return box, ok, nil
}

// BeginMove starts a move gesture on a box, clamped against its page bounds.
func (s *Session) BeginMove(id boxedit.ID) (*boxedit.Gesture, error) {
	return s.beginGesture(id, s.boxes.BeginMove)
}

// BeginResize starts a resize gesture on a box.
func (s *Session) BeginResize(id boxedit.ID) (*boxedit.Gesture, error) {
	return s.beginGesture(id, s.boxes.BeginResize)
}

func (s *Session) beginGesture(id boxedit.ID, begin func(boxedit.ID, geom.PixelSize) (*boxedit.Gesture, bool)) (*boxedit.Gesture, error) {
	box, ok := s.boxes.Get(id)
	if !ok {
		return nil, fmt.Errorf("no box with id %d", id)
	}
	bounds, err := s.pageBounds(box.Page)
	if err != nil {
		return nil, err
	}
	g, ok := begin(id, bounds)
	if !ok {
		return nil, fmt.Errorf("cannot start gesture on box %d", id)
	}
	return g, nil
}

// ApplyBoxes creates boxes from a parsed box description. Entries whose page
// does not exist or whose rectangle cannot yield a usable box are skipped
// with a logged warning. The description's zoom, when set, becomes the
// session zoom before any rectangle is interpreted.
func (s *Session) ApplyBoxes(bf *boxfile.File) (applied, skipped int, err error) {
	if bf.Zoom > 0 {
		s.SetZoom(bf.Zoom)
	}
	for i, e := range bf.Boxes {
		if e.Page < 0 || e.Page >= s.file.PageCount() {
			fmt.Fprintf(s.cfg.Logger, "Warning: box %d is on page %d, document has %d page(s), skipping\n",
				i+1, e.Page+1, s.file.PageCount())
			skipped++
			continue
		}
		bounds, err := s.pageBounds(e.Page)
		if err != nil {
			return applied, skipped, err
		}
		box, ok := s.boxes.Create(e.Page, e.PixelRect(), bounds, s.entryFont(bf, e))
		if !ok {
			fmt.Fprintf(s.cfg.Logger, "Warning: box %d does not fit on page %d, skipping\n", i+1, e.Page+1)
			skipped++
			continue
		}
		if e.Text != "" {
			s.boxes.CommitText(box.ID, e.Text)
		}
		applied++
	}
	return applied, skipped, nil
}

func (s *Session) entryFont(bf *boxfile.File, e boxfile.Entry) boxedit.FontSettings {
	font := boxedit.FontSettings{Family: s.cfg.FontFamily, Size: s.cfg.FontSize}
	for _, o := range []*boxfile.Font{bf.Font, e.Font} {
		if o == nil {
			continue
		}
		if o.Family != "" {
			font.Family = o.Family
		}
		if o.Size > 0 {
			font.Size = o.Size
		}
	}
	return font
}

// Save writes the boxes as annotations back to the open document's path.
func (s *Session) Save() error { return s.SaveAs(s.path) }

// SaveAs serializes the boxes into free-text annotations on a fresh working
// copy of the original file and writes it to path as an incremental update.
// Using a fresh copy keeps repeated saves from stacking duplicates.
func (s *Session) SaveAs(path string) error {
	work, err := pdffile.Open(s.path)
	if err != nil {
		return fmt.Errorf("reopen for save: %w", err)
	}
	ser := &annot.Serializer{ZoomForPage: s.zoomForPage, Logger: s.cfg.Logger}
	res, err := ser.Serialize(work, s.boxes.Boxes())
	if err != nil {
		return err
	}
	if err := work.SaveIncrementalFile(path); err != nil {
		return err
	}
	fmt.Fprintf(s.cfg.Logger, "Saved %d annotation(s) to %s (%d empty box(es) skipped)\n",
		res.Written, path, res.Skipped)
	return nil
}

// ExportFlattened writes a copy of the document with the boxes painted into
// the page content instead of attached as annotations.
func (s *Session) ExportFlattened(path string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	out, err := annot.Flatten(data, s.boxes.Boxes(), s.file.PageCount(), s.file.PageSizePoints, s.zoomForPage)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DetectExisting scans the open document for free-text annotations left by
// an earlier editing pass.
func (s *Session) DetectExisting() (pdffile.Detection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return pdffile.Detection{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return pdffile.DetectFreeText(data)
}
