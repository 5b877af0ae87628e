package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/marquette/marquette/pkg/boxfile"
	"github.com/marquette/marquette/pkg/geom"
	"github.com/marquette/marquette/pkg/pdffile"
)

func fixturePath(t *testing.T, pages int) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
	}
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("building fixture PDF: %v", err)
	}
	return path
}

func testConfig(log *bytes.Buffer) Config {
	cfg := DefaultConfig()
	cfg.Logger = log
	return cfg
}

func TestOpenDefaults(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 2), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PageCount() != 2 {
		t.Errorf("PageCount = %d, want 2", s.PageCount())
	}
	if s.Zoom() != 2.0 {
		t.Errorf("default zoom = %g, want 2.0", s.Zoom())
	}
}

func TestSetZoomClamps(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 1), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.SetZoom(10); got != 4.0 {
		t.Errorf("SetZoom(10) = %g, want 4.0", got)
	}
	if got := s.SetZoom(0.01); got != 0.25 {
		t.Errorf("SetZoom(0.01) = %g, want 0.25", got)
	}
	if got := s.SetZoom(1.5); got != 1.5 {
		t.Errorf("SetZoom(1.5) = %g, want 1.5", got)
	}
}

func TestCreateBoxFromClick(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 1), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// A4 at zoom 2 renders to 1191x1684 pixels.
	p, err := s.RenderPage(0)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if p.Bounds != (geom.PixelSize{W: 1191, H: 1684}) {
		t.Fatalf("page bounds = %+v", p.Bounds)
	}

	box, ok, err := s.CreateBox(0, geom.PixelRect{X: 30, Y: 400})
	if err != nil || !ok {
		t.Fatalf("CreateBox: ok=%v err=%v", ok, err)
	}
	want := geom.PixelRect{X: 30, Y: 385, W: 360, H: 30}
	if box.Rect != want {
		t.Errorf("box rect = %+v, want %+v", box.Rect, want)
	}
	if box.FontFamily != "Arial" || box.FontSize != 12 {
		t.Errorf("box font = %s/%d, want Arial/12", box.FontFamily, box.FontSize)
	}

	if _, _, err := s.CreateBox(5, geom.PixelRect{X: 10, Y: 10}); err == nil {
		t.Error("CreateBox accepted an out-of-range page")
	}
}

func TestGestures(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 1), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	box, ok, err := s.CreateBox(0, geom.PixelRect{X: 100, Y: 200})
	if err != nil || !ok {
		t.Fatalf("CreateBox: ok=%v err=%v", ok, err)
	}

	g, err := s.BeginMove(box.ID)
	if err != nil {
		t.Fatalf("BeginMove: %v", err)
	}
	g.Update(25, -40)
	if !g.End() {
		t.Error("move gesture pushed no command")
	}
	moved, _ := s.Boxes().Get(box.ID)
	if moved.Rect.X != box.Rect.X+25 || moved.Rect.Y != box.Rect.Y-40 {
		t.Errorf("moved rect = %+v", moved.Rect)
	}

	if _, err := s.BeginResize(999); err == nil {
		t.Error("BeginResize accepted a missing box")
	}
}

func TestApplyBoxes(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 2), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	bf := &boxfile.File{
		Zoom: 2.0,
		Font: &boxfile.Font{Family: "Courier New", Size: 10},
		Boxes: []boxfile.Entry{
			{Page: 0, Rect: [4]int{30, 385, 360, 30}, Text: "first"},
			{Page: 1, Rect: [4]int{50, 50, 200, 40}, Text: "second",
				Font: &boxfile.Font{Family: "Times New Roman", Size: 14}},
			{Page: 7, Rect: [4]int{10, 10, 100, 30}, Text: "beyond last page"},
			{Page: 0, Rect: [4]int{1188, 10, 2, 2}, Text: "clicked at right edge"},
		},
	}
	applied, skipped, err := s.ApplyBoxes(bf)
	if err != nil {
		t.Fatalf("ApplyBoxes: %v", err)
	}
	if applied != 2 || skipped != 2 {
		t.Errorf("applied/skipped = %d/%d, want 2/2", applied, skipped)
	}
	if !strings.Contains(log.String(), "Warning:") {
		t.Errorf("skips not logged: %q", log.String())
	}

	boxes := s.Boxes().Boxes()
	if len(boxes) != 2 {
		t.Fatalf("collection has %d boxes, want 2", len(boxes))
	}
	if boxes[0].Text != "first" || boxes[0].FontFamily != "Courier New" || boxes[0].FontSize != 10 {
		t.Errorf("box 0 = %+v", boxes[0])
	}
	if boxes[1].FontFamily != "Times New Roman" || boxes[1].FontSize != 14 {
		t.Errorf("box 1 font = %s/%d", boxes[1].FontFamily, boxes[1].FontSize)
	}
}

func TestSaveAs(t *testing.T) {
	var log bytes.Buffer
	path := fixturePath(t, 1)
	s, err := Open(path, nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	box, ok, err := s.CreateBox(0, geom.PixelRect{X: 30, Y: 400})
	if err != nil || !ok {
		t.Fatalf("CreateBox: ok=%v err=%v", ok, err)
	}
	s.Boxes().CommitText(box.ID, "annotated")

	out := filepath.Join(t.TempDir(), "annotated.pdf")
	if err := s.SaveAs(out); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	saved, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	original, _ := os.ReadFile(path)
	if !bytes.HasPrefix(saved, original) {
		t.Error("incremental save did not preserve the original bytes")
	}
	det, err := pdffile.DetectFreeText(saved)
	if err != nil {
		t.Fatalf("DetectFreeText: %v", err)
	}
	if det.Count != 1 {
		t.Errorf("saved file has %d free-text annotations, want 1", det.Count)
	}
	if !strings.Contains(log.String(), "Saved 1 annotation(s)") {
		t.Errorf("save summary not logged: %q", log.String())
	}

	// A second save starts from a fresh working copy, so annotations must
	// not stack.
	out2 := filepath.Join(t.TempDir(), "annotated2.pdf")
	if err := s.SaveAs(out2); err != nil {
		t.Fatalf("second SaveAs: %v", err)
	}
	saved2, _ := os.ReadFile(out2)
	det2, _ := pdffile.DetectFreeText(saved2)
	if det2.Count != 1 {
		t.Errorf("second save has %d annotations, want 1", det2.Count)
	}
}

func TestExportFlattened(t *testing.T) {
	var log bytes.Buffer
	s, err := Open(fixturePath(t, 1), nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	box, ok, err := s.CreateBox(0, geom.PixelRect{X: 30, Y: 400})
	if err != nil || !ok {
		t.Fatalf("CreateBox: ok=%v err=%v", ok, err)
	}
	s.Boxes().CommitText(box.ID, "burned in")

	out := filepath.Join(t.TempDir(), "flat.pdf")
	if err := s.ExportFlattened(out); err != nil {
		t.Fatalf("ExportFlattened: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("export is not a PDF")
	}
}

func TestDetectExisting(t *testing.T) {
	var log bytes.Buffer
	path := fixturePath(t, 1)
	s, err := Open(path, nil, testConfig(&log))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	det, err := s.DetectExisting()
	if err != nil {
		t.Fatalf("DetectExisting: %v", err)
	}
	if det.HasFreeText {
		t.Errorf("clean file reported annotations: %+v", det)
	}
}
