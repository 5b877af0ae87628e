package pdffile

import (
	"fmt"
	"regexp"
)

// Detection summarizes the free-text annotations already present in a file.
type Detection struct {
	HasFreeText bool
	Count       int
}

var freeTextRE = regexp.MustCompile(`/Subtype\s*/FreeText\b`)

// DetectFreeText scans raw PDF data for free-text annotation dictionaries.
// The scan is lenient: it looks at the raw bytes without resolving the xref
// chain, so annotations removed by a later revision may still be counted.
// Callers use it to warn before annotating a document a second time.
func DetectFreeText(pdfData []byte) (Detection, error) {
	if len(pdfData) == 0 {
		return Detection{}, fmt.Errorf("PDF data is empty")
	}
	n := len(freeTextRE.FindAll(pdfData, -1))
	return Detection{HasFreeText: n > 0, Count: n}, nil
}
