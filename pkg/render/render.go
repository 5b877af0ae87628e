// Package render produces pixel-space page views for the editor. Boxes are
// positioned against these views, so every renderer reports the pixel bounds
// of a page at a given zoom; image-backed renderers also supply the picture
// itself.
package render

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/marquette/marquette/pkg/geom"
)

// Page is one rendered page view.
type Page struct {
	Number int
	Bounds geom.PixelSize
	Image  image.Image // nil for size-only renderers
}

// Renderer renders document pages at a zoom factor.
type Renderer interface {
	PageCount() int
	RenderPage(page int, zoom float64) (Page, error)
}

// ImageDir serves pre-rendered page images from a directory, one image per
// page in filename order. The images are taken to be rendered at zoom 1 and
// are rescaled on demand.
type ImageDir struct {
	paths []string
}

// OpenImageDir lists the page images in dir.
func OpenImageDir(dir string) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page image dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no page images in %s", dir)
	}
	sort.Strings(paths)
	return &ImageDir{paths: paths}, nil
}

func (d *ImageDir) PageCount() int { return len(d.paths) }

func (d *ImageDir) RenderPage(page int, zoom float64) (Page, error) {
	if page < 0 || page >= len(d.paths) {
		return Page{}, fmt.Errorf("page %d out of range [0, %d)", page, len(d.paths))
	}
	if zoom <= 0 {
		return Page{}, fmt.Errorf("zoom %g is not positive", zoom)
	}

	img, err := imaging.Open(d.paths[page])
	if err != nil {
		return Page{}, fmt.Errorf("open page image %s: %w", d.paths[page], err)
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * zoom))
	h := int(math.Round(float64(b.Dy()) * zoom))
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)

	return Page{
		Number: page,
		Bounds: geom.PixelSize{W: w, H: h},
		Image:  scaled,
	}, nil
}

// SizeFunc reports a page's size in document points.
type SizeFunc func(page int) (w, h float64, err error)

// PointBounds is a size-only renderer: it synthesizes pixel bounds from
// document-point page sizes at one pixel per point at zoom 1. It backs
// headless editing, where box geometry matters but no picture is shown.
type PointBounds struct {
	Pages int
	Size  SizeFunc
}

func (p *PointBounds) PageCount() int { return p.Pages }

func (p *PointBounds) RenderPage(page int, zoom float64) (Page, error) {
	if page < 0 || page >= p.Pages {
		return Page{}, fmt.Errorf("page %d out of range [0, %d)", page, p.Pages)
	}
	if zoom <= 0 {
		return Page{}, fmt.Errorf("zoom %g is not positive", zoom)
	}
	w, h, err := p.Size(page)
	if err != nil {
		return Page{}, fmt.Errorf("page %d size: %w", page, err)
	}
	return Page{
		Number: page,
		Bounds: geom.PixelSize{
			W: int(math.Round(w * zoom)),
			H: int(math.Round(h * zoom)),
		},
	}, nil
}
