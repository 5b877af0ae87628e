// Package boxfile loads text-box definitions from external sources: a YAML
// description written by hand or emitted by other tooling, or an hOCR file
// produced by OCR engines. Both forms yield pixel-space entries that the
// editor turns into live boxes.
package boxfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marquette/marquette/pkg/geom"
)

// Font is an optional per-file or per-box font override.
type Font struct {
	Family string `yaml:"family"`
	Size   int    `yaml:"size"`
}

// Entry is one box: a pixel rectangle on a page plus its text.
type Entry struct {
	Page int    `yaml:"page"`
	Rect [4]int `yaml:"rect,flow"` // x, y, w, h in pixels
	Text string `yaml:"text"`
	Font *Font  `yaml:"font,omitempty"`
}

// PixelRect returns the entry's rectangle as editor geometry.
func (e Entry) PixelRect() geom.PixelRect {
	return geom.PixelRect{X: e.Rect[0], Y: e.Rect[1], W: e.Rect[2], H: e.Rect[3]}
}

// File is a parsed box description.
type File struct {
	Zoom  float64 `yaml:"zoom,omitempty"` // zoom the rectangles were measured at
	Font  *Font   `yaml:"font,omitempty"` // default font for all boxes
	Boxes []Entry `yaml:"boxes"`
}

// ParseYAML parses and validates a YAML box description.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse box file: %w", err)
	}
	if f.Zoom < 0 {
		return nil, fmt.Errorf("zoom %g is negative", f.Zoom)
	}
	for i, e := range f.Boxes {
		if e.Page < 0 {
			return nil, fmt.Errorf("box %d: page %d is negative", i+1, e.Page)
		}
		if e.Rect[2] < 0 || e.Rect[3] < 0 {
			return nil, fmt.Errorf("box %d: rect %v has a negative extent", i+1, e.Rect)
		}
		if e.Font != nil && e.Font.Size < 0 {
			return nil, fmt.Errorf("box %d: font size %d is negative", i+1, e.Font.Size)
		}
	}
	return &f, nil
}

// LoadYAML reads and parses the box description at path.
func LoadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
