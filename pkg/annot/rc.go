package annot

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RichContent builds the XHTML rich-content body (the /RC entry) for a
// free-text annotation. Viewers that honor rich content use it in preference
// to the default appearance string, so it carries the same normalized style:
// black text in the mapped portable family at the box's size.
func RichContent(text string, font FontID, size int) string {
	style := fmt.Sprintf("font-family:%s;font-size:%dpt;color:#000000", font, size)

	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
		Attr: []html.Attribute{
			{Key: "xmlns", Val: "http://www.w3.org/1999/xhtml"},
		},
	}
	p := &html.Node{
		Type:     html.ElementNode,
		Data:     "p",
		DataAtom: atom.P,
		Attr:     []html.Attribute{{Key: "style", Val: style}},
	}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	body.AppendChild(p)

	// Rendering into a bytes.Buffer cannot fail.
	var buf bytes.Buffer
	html.Render(&buf, body)
	return buf.String()
}
