package pdffile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marquette/marquette/pkg/annot"
)

// FreeText is one staged free-text annotation. Style setters adjust the
// object before it is written; they validate their input but writing itself
// is deferred to the next incremental save.
type FreeText struct {
	page int
	rect [4]float64 // bottom-up user space [llx lly urx ury]
	text string

	borderWidth float64
	noFill      bool
	opacity     float64
	font        annot.FontID
	size        int
	rich        string
}

// SetBorderWidth sets the border line width in points. Zero removes the
// border entirely.
func (ft *FreeText) SetBorderWidth(w float64) error {
	if w < 0 {
		return fmt.Errorf("border width %g is negative", w)
	}
	ft.borderWidth = w
	return nil
}

// SetNoFill removes the annotation's interior color so the page shows
// through behind the text.
func (ft *FreeText) SetNoFill() error {
	ft.noFill = true
	return nil
}

// SetOpacity sets the annotation's constant opacity, 0 transparent through 1
// opaque.
func (ft *FreeText) SetOpacity(a float64) error {
	if a < 0 || a > 1 {
		return fmt.Errorf("opacity %g outside [0, 1]", a)
	}
	ft.opacity = a
	return nil
}

// SetAppearance sets the default-appearance font and size used by viewers
// that regenerate the annotation's appearance stream.
func (ft *FreeText) SetAppearance(font annot.FontID, size int) error {
	if size <= 0 {
		return fmt.Errorf("font size %d is not positive", size)
	}
	ft.font = font
	ft.size = size
	return nil
}

// SetRichContent attaches the XHTML rich-content body honored by richer
// viewers in preference to the default appearance.
func (ft *FreeText) SetRichContent(rc string) error {
	if rc == "" {
		return fmt.Errorf("rich content is empty")
	}
	ft.rich = rc
	return nil
}

// dictBody renders the annotation dictionary. pageRef is the owning page's
// indirect reference, e.g. "3 0 R".
func (ft *FreeText) dictBody(pageRef string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<< /Type /Annot /Subtype /FreeText\n/Rect [%s %s %s %s]\n",
		fmtNum(ft.rect[0]), fmtNum(ft.rect[1]), fmtNum(ft.rect[2]), fmtNum(ft.rect[3]))
	fmt.Fprintf(&sb, "/Contents %s\n", encodeString(ft.text))
	fmt.Fprintf(&sb, "/DA (0 g /%s %d Tf)\n", ft.font.ResourceName(), ft.size)
	fmt.Fprintf(&sb, "/F 4 /Q 0\n")
	fmt.Fprintf(&sb, "/Border [0 0 %s]\n", fmtNum(ft.borderWidth))
	fmt.Fprintf(&sb, "/CA %s\n", fmtNum(ft.opacity))
	if !ft.noFill {
		sb.WriteString("/C [1 1 1]\n")
	}
	if ft.rich != "" {
		fmt.Fprintf(&sb, "/RC %s\n", encodeString(ft.rich))
	}
	fmt.Fprintf(&sb, "/P %s >>", pageRef)
	return sb.String()
}

// fmtNum formats a PDF numeric without a trailing exponent or excess zeros.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
