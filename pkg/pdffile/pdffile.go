// Package pdffile opens existing PDF files just far enough to append
// free-text annotations to their pages and write the result back as an
// incremental update, leaving every byte of the original file untouched.
//
// The package deliberately avoids a full PDF object parser. The file is
// scanned leniently for the structures the editor needs: indirect object
// headers, the page tree, MediaBox entries, and the trailer's Root and
// startxref. Annotations are staged in memory and written as an appended
// revision (new objects, rewritten page dictionaries, a cross-reference
// table section and a trailer carrying /Prev) per the standard
// incremental-update mechanism, so prior revisions (including signatures)
// survive a save.
//
// Documents whose latest revision uses cross-reference streams receive a
// classic table section for the update; widely deployed viewers accept the
// mix.
package pdffile

import (
	"fmt"
	"os"

	"github.com/marquette/marquette/pkg/annot"
	"github.com/marquette/marquette/pkg/geom"
)

// File is one open PDF working copy plus any staged annotations. A File is
// read-only with respect to the original bytes; all modifications are staged
// and only materialize in SaveIncremental output.
type File struct {
	data    []byte
	objects map[int]objEntry
	order   []int // object numbers in first-appearance order
	pages   []*page
	maxObj  int

	rootNum, rootGen int
	prevXref         int

	staged []*FreeText
}

// page is one resolved page object.
type page struct {
	objNum, gen int
	dict        string
	media       [4]float64 // [llx lly urx ury]
}

// Open reads and scans the PDF at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// OpenBytes scans in-memory PDF data. The slice is retained and must not be
// modified while the File is in use.
func OpenBytes(data []byte) (*File, error) {
	if len(data) < 8 || string(data[:5]) != "%PDF-" {
		return nil, fmt.Errorf("data is not a PDF")
	}

	f := &File{data: data}
	f.scanObjects()
	f.scanTrailer()
	f.buildPages()

	if len(f.pages) == 0 {
		return nil, fmt.Errorf("no page objects found")
	}
	if f.rootNum == 0 {
		return nil, fmt.Errorf("no document catalog reference found")
	}
	if f.prevXref == 0 {
		return nil, fmt.Errorf("no startxref found")
	}
	return f, nil
}

// PageCount returns the number of pages found in the document.
func (f *File) PageCount() int { return len(f.pages) }

// PageSizePoints returns the page's MediaBox extent in document points.
func (f *File) PageSizePoints(pageIdx int) (w, h float64, err error) {
	if pageIdx < 0 || pageIdx >= len(f.pages) {
		return 0, 0, fmt.Errorf("page %d out of range [0, %d)", pageIdx, len(f.pages))
	}
	m := f.pages[pageIdx].media
	return m[2] - m[0], m[3] - m[1], nil
}

// AddFreeText stages a free-text annotation on the given page. The rectangle
// is in top-down document-point space relative to the page's top-left corner;
// it is converted here to the page's bottom-up user space.
func (f *File) AddFreeText(pageIdx int, rect geom.PointRect, text string) (annot.Annotation, error) {
	if pageIdx < 0 || pageIdx >= len(f.pages) {
		return nil, fmt.Errorf("page %d out of range [0, %d)", pageIdx, len(f.pages))
	}
	if text == "" {
		return nil, fmt.Errorf("annotation text is empty")
	}

	m := f.pages[pageIdx].media
	pageH := m[3] - m[1]
	ft := &FreeText{
		page: pageIdx,
		rect: [4]float64{
			m[0] + rect.X0,
			m[1] + pageH - rect.Y1,
			m[0] + rect.X1,
			m[1] + pageH - rect.Y0,
		},
		text:    text,
		opacity: 1,
		font:    annot.FontSansSerif,
		size:    12,
	}
	f.staged = append(f.staged, ft)
	return ft, nil
}

// Staged returns the number of annotations staged for the next save.
func (f *File) Staged() int { return len(f.staged) }
