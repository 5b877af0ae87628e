package annot

import "strings"

// FontID is one of the three portable font identifiers that render reliably
// across viewers. Persisted annotations only ever carry these; the box's
// original family name is advisory and may not exist on the viewing machine.
type FontID string

const (
	FontSansSerif FontID = "sans-serif"
	FontSerif     FontID = "serif"
	FontMonospace FontID = "monospace"
)

// BaseFont returns the standard base-14 font name for the identifier.
func (f FontID) BaseFont() string {
	switch f {
	case FontMonospace:
		return "Courier"
	case FontSerif:
		return "Times-Roman"
	default:
		return "Helvetica"
	}
}

// ResourceName returns the short font resource name used in default
// appearance strings, matching the names viewers register for the base-14
// set.
func (f FontID) ResourceName() string {
	switch f {
	case FontMonospace:
		return "Cour"
	case FontSerif:
		return "TiRo"
	default:
		return "Helv"
	}
}

// fontTable maps family-name keywords to portable identifiers. Order
// matters: the first entry with a matching keyword wins, and families
// matching nothing fall through to sans-serif.
var fontTable = []struct {
	keywords []string
	id       FontID
}{
	{[]string{"courier", "consolas", "mono"}, FontMonospace},
	{[]string{"times", "serif"}, FontSerif},
}

// MapFamily resolves a font family name to a portable identifier by
// case-insensitive substring matching against known family-name keywords.
func MapFamily(family string) FontID {
	fam := strings.ToLower(family)
	for _, entry := range fontTable {
		for _, kw := range entry.keywords {
			if strings.Contains(fam, kw) {
				return entry.id
			}
		}
	}
	return FontSansSerif
}
