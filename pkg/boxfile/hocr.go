package boxfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/marquette/marquette/pkg/geom"
)

// ParseHOCR extracts box entries from hOCR data, one entry per recognized
// text line. Pages are numbered in document order, so a single-page hOCR
// file yields entries on page 0. Lines without a bbox or without text are
// skipped.
//
// hOCR coordinates are pixels in the source scan, which matches the editor's
// pixel space when the scan and the rendered page share a resolution;
// otherwise callers rescale via the box file's zoom field.
func ParseHOCR(data []byte) ([]Entry, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	var entries []Entry
	pageIdx := -1

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			class := getAttrVal(n, "class")
			switch {
			case strings.Contains(class, "ocr_page"):
				pageIdx++
			case strings.Contains(class, "ocr_line") || strings.Contains(class, "ocrx_line"):
				if pageIdx < 0 {
					break
				}
				rect, ok := bboxFromTitle(getAttrVal(n, "title"))
				if !ok {
					return
				}
				text := collapseSpace(textContent(n))
				if text == "" {
					return
				}
				entries = append(entries, Entry{
					Page: pageIdx,
					Rect: [4]int{rect.X, rect.Y, rect.W, rect.H},
					Text: text,
				})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if pageIdx < 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return entries, nil
}

// bboxFromTitle extracts the bbox property from an hOCR title attribute,
// e.g. "bbox 100 200 300 400; x_wconf 95".
func bboxFromTitle(title string) (geom.PixelRect, bool) {
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) != 5 || items[0] != "bbox" {
			continue
		}
		var c [4]int
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(items[i+1])
			if err != nil {
				return geom.PixelRect{}, false
			}
			c[i] = v
		}
		r := geom.PixelRect{X: c[0], Y: c[1], W: c[2] - c[0], H: c[3] - c[1]}
		return r.Normalize(), true
	}
	return geom.PixelRect{}, false
}

// textContent gathers all text beneath a node, with spaces between sibling
// fragments so word spans do not run together.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := textContent(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func getAttrVal(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
