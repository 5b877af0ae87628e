package annot

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"golang.org/x/text/encoding/charmap"

	"github.com/marquette/marquette/pkg/boxedit"
)

// ascentRatio positions the text baseline within the box, tuned for the
// base-14 fonts.
const ascentRatio = 0.718

// PageSizeFunc reports a page's size in document points.
type PageSizeFunc func(page int) (w, h float64, err error)

// Flatten rebuilds the PDF with every non-empty box drawn directly into the
// page content, for viewers and print pipelines that ignore annotations. The
// original pages are imported unchanged and the text is painted on top.
//
// Unlike the incremental annotation save, the output is a new document: prior
// revisions are not preserved and the boxes are no longer editable.
func Flatten(inputPDF []byte, boxes []boxedit.Box, pageCount int, size PageSizeFunc, zoomForPage func(page int) float64) ([]byte, error) {
	if len(inputPDF) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if pageCount < 1 {
		return nil, fmt.Errorf("document has no pages")
	}

	byPage := make(map[int][]boxedit.Box)
	for _, b := range boxes {
		byPage[b.Page] = append(byPage[b.Page], b)
	}

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDF))

	for page := 0; page < pageCount; page++ {
		w, h, err := size(page)
		if err != nil {
			return nil, fmt.Errorf("page %d size: %w", page+1, err)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		tpl := importer.ImportPageFromStream(pdf, &rs, page+1, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, 0)

		pageBoxes := byPage[page]
		sort.SliceStable(pageBoxes, func(i, j int) bool { return pageBoxes[i].ID < pageBoxes[j].ID })
		for _, b := range pageBoxes {
			drawBox(pdf, b, zoom(zoomForPage, b.Page))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBox paints one box's text at its document-point position.
func drawBox(pdf *fpdf.Fpdf, b boxedit.Box, zoom float64) {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return
	}

	rect := b.Rect.ToPoints(zoom)
	font := MapFamily(b.FontFamily)
	size := float64(b.FontSize)
	if size <= 0 {
		size = 12
	}

	pdf.SetFont(flattenFontName(font), "", size)
	pdf.SetTextColor(0, 0, 0)

	// Convert to ISO-8859-1 to avoid PDF encoding issues in the content
	// stream; characters outside the set fall back to the raw text.
	latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		latin1 = text
	}

	pdf.Text(rect.X0, rect.Y0+size*ascentRatio, latin1)
}

// flattenFontName returns the fpdf core font name for a portable identifier.
func flattenFontName(f FontID) string {
	switch f {
	case FontMonospace:
		return "Courier"
	case FontSerif:
		return "Times"
	default:
		return "Helvetica"
	}
}

func zoom(zoomForPage func(page int) float64, page int) float64 {
	if zoomForPage != nil {
		if z := zoomForPage(page); z > 0 {
			return z
		}
	}
	return 1.0
}
