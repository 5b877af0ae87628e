package pdffile

import (
	"bytes"
	"math"
	"regexp"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/marquette/marquette/pkg/annot"
	"github.com/marquette/marquette/pkg/geom"
)

func fixturePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("building fixture PDF: %v", err)
	}
	return buf.Bytes()
}

func TestOpenBytes(t *testing.T) {
	f, err := OpenBytes(fixturePDF(t, 3))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if f.PageCount() != 3 {
		t.Errorf("PageCount = %d, want 3", f.PageCount())
	}
	w, h, err := f.PageSizePoints(0)
	if err != nil {
		t.Fatalf("PageSizePoints: %v", err)
	}
	if math.Abs(w-595.28) > 0.5 || math.Abs(h-841.89) > 0.5 {
		t.Errorf("page size = %.2f x %.2f, want about 595.28 x 841.89", w, h)
	}
	if _, _, err := f.PageSizePoints(3); err == nil {
		t.Error("PageSizePoints accepted an out-of-range page")
	}
}

func TestOpenBytesRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello world, definitely not a PDF")} {
		if _, err := OpenBytes(data); err == nil {
			t.Errorf("OpenBytes(%q) succeeded", data)
		}
	}
}

func TestAddFreeTextValidation(t *testing.T) {
	f, err := OpenBytes(fixturePDF(t, 1))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	rect := geom.PointRect{X0: 15, Y0: 192.5, X1: 195, Y1: 207.5}
	if _, err := f.AddFreeText(1, rect, "x"); err == nil {
		t.Error("annotation beyond the last page accepted")
	}
	if _, err := f.AddFreeText(0, rect, ""); err == nil {
		t.Error("empty annotation text accepted")
	}
	if f.Staged() != 0 {
		t.Errorf("rejected annotations were staged: %d", f.Staged())
	}
}

func TestSaveIncremental(t *testing.T) {
	original := fixturePDF(t, 2)
	f, err := OpenBytes(original)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	a, err := f.AddFreeText(0, geom.PointRect{X0: 15, Y0: 192.5, X1: 195, Y1: 207.5}, "note one")
	if err != nil {
		t.Fatalf("AddFreeText: %v", err)
	}
	if err := a.SetBorderWidth(0); err != nil {
		t.Fatalf("SetBorderWidth: %v", err)
	}
	if err := a.SetNoFill(); err != nil {
		t.Fatalf("SetNoFill: %v", err)
	}
	if err := a.SetAppearance(annot.FontMonospace, 10); err != nil {
		t.Fatalf("SetAppearance: %v", err)
	}
	if _, err := f.AddFreeText(1, geom.PointRect{X0: 40, Y0: 40, X1: 200, Y1: 80}, "note two"); err != nil {
		t.Fatalf("AddFreeText: %v", err)
	}

	var out bytes.Buffer
	if err := f.SaveIncremental(&out); err != nil {
		t.Fatalf("SaveIncremental: %v", err)
	}
	saved := out.Bytes()

	// The original revision must survive byte for byte.
	if !bytes.HasPrefix(saved, original) {
		t.Fatal("saved file does not begin with the original bytes")
	}

	det, err := DetectFreeText(saved)
	if err != nil {
		t.Fatalf("DetectFreeText: %v", err)
	}
	if !det.HasFreeText || det.Count != 2 {
		t.Errorf("detection = %+v, want 2 free-text annotations", det)
	}

	if !strings.Contains(string(saved), "(note one)") {
		t.Error("annotation contents missing from output")
	}
	if !strings.Contains(string(saved), "/DA (0 g /Cour 10 Tf)") {
		t.Error("default appearance string missing or wrong")
	}
	if !strings.Contains(string(saved), "/Annots [") {
		t.Error("pages were not given /Annots arrays")
	}
	if !regexp.MustCompile(`/Prev \d+`).MatchString(string(saved)) {
		t.Error("appended trailer has no /Prev")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(saved), []byte("%%EOF")) {
		t.Errorf("output does not end with %%%%EOF")
	}

	// The updated file must stay openable with the same page count.
	f2, err := OpenBytes(saved)
	if err != nil {
		t.Fatalf("reopening saved file: %v", err)
	}
	if f2.PageCount() != 2 {
		t.Errorf("reopened PageCount = %d, want 2", f2.PageCount())
	}
}

func TestSaveIncrementalFlipsY(t *testing.T) {
	f, err := OpenBytes(fixturePDF(t, 1))
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if _, err := f.AddFreeText(0, geom.PointRect{X0: 15, Y0: 192.5, X1: 195, Y1: 207.5}, "flip"); err != nil {
		t.Fatalf("AddFreeText: %v", err)
	}

	var out bytes.Buffer
	if err := f.SaveIncremental(&out); err != nil {
		t.Fatalf("SaveIncremental: %v", err)
	}

	// Top-down Y0=192.5, Y1=207.5 on an 841.89pt page becomes a bottom-up
	// rect from 634.39 to 649.39.
	m := regexp.MustCompile(`/Rect \[([\d. ]+)\]`).FindStringSubmatch(out.String())
	if m == nil {
		t.Fatal("no /Rect in output")
	}
	if m[1] != "15 634.39 195 649.39" {
		t.Errorf("rect = %q, want %q", m[1], "15 634.39 195 649.39")
	}
}

func TestSaveIncrementalNothingStaged(t *testing.T) {
	original := fixturePDF(t, 1)
	f, err := OpenBytes(original)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	var out bytes.Buffer
	if err := f.SaveIncremental(&out); err != nil {
		t.Fatalf("SaveIncremental: %v", err)
	}
	if !bytes.Equal(out.Bytes(), original) {
		t.Error("save with no staged annotations modified the file")
	}
}

func TestEncodeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "(plain)"},
		{"with (parens) and \\slash", `(with \(parens\) and \\slash)`},
		{"line\nbreak", `(line\nbreak)`},
		{"café", "(caf\xe9)"},
		{"→ arrow", "<FEFF21920020006100720072006F0077>"},
	}
	for _, tt := range tests {
		if got := encodeString(tt.in); got != tt.want {
			t.Errorf("encodeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFreeTextEmptyInput(t *testing.T) {
	if _, err := DetectFreeText(nil); err == nil {
		t.Error("DetectFreeText accepted empty data")
	}
}

func TestDetectFreeTextCleanFile(t *testing.T) {
	det, err := DetectFreeText(fixturePDF(t, 1))
	if err != nil {
		t.Fatalf("DetectFreeText: %v", err)
	}
	if det.HasFreeText || det.Count != 0 {
		t.Errorf("detection on clean file = %+v", det)
	}
}

func TestMediaBoxInheritance(t *testing.T) {
	data := []byte(`%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 300 400] >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R >>
endobj
trailer
<< /Size 4 /Root 1 0 R >>
startxref
9
%%EOF
`)
	f, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if f.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", f.PageCount())
	}
	w, h, err := f.PageSizePoints(0)
	if err != nil {
		t.Fatalf("PageSizePoints: %v", err)
	}
	if w != 300 || h != 400 {
		t.Errorf("inherited size = %g x %g, want 300 x 400", w, h)
	}
}

func TestIndirectAnnotsArray(t *testing.T) {
	data := []byte(`%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Annots 4 0 R >>
endobj
4 0 obj
[5 0 R]
endobj
5 0 obj
<< /Type /Annot /Subtype /Square /Rect [0 0 10 10] >>
endobj
trailer
<< /Size 6 /Root 1 0 R >>
startxref
9
%%EOF
`)
	f, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if _, err := f.AddFreeText(0, geom.PointRect{X0: 10, Y0: 10, X1: 60, Y1: 30}, "x"); err != nil {
		t.Fatalf("AddFreeText: %v", err)
	}
	var out bytes.Buffer
	if err := f.SaveIncremental(&out); err != nil {
		t.Fatalf("SaveIncremental: %v", err)
	}
	// The array object is rewritten with both references; the page dict is
	// not redefined.
	if !strings.Contains(out.String(), "4 0 obj\n[5 0 R 6 0 R]") {
		t.Errorf("annots array not extended:\n%s", out.String())
	}
	if strings.Count(out.String(), "3 0 obj") != 1 {
		t.Error("page object was redefined unnecessarily")
	}
}
