// Package geometry maps page rasters onto the fixed-size canvas the
// detector sees and maps detected coordinates back into page pixel space.
package geometry

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/utils"
)

// Canvas is the rendered detection input for one page plus everything
// needed to invert the mapping.
type Canvas struct {
	PNG            []byte
	Size           int
	OriginalWidth  float64
	OriginalHeight float64
	Scale          float64
}

// Processor renders pages onto square padded canvases.
//
// Padding to a square avoids the aspect-ratio distortion vision models
// apply to non-square inputs, and pasting at the top-left keeps a single
// uniform scale for both axes so the inverse mapping stays exact.
type Processor struct {
	targetSize int
}

// NewProcessor creates a processor with the given canvas side length.
func NewProcessor(targetSize int) *Processor {
	return &Processor{targetSize: targetSize}
}

// TargetSize returns the canvas side length.
func (p *Processor) TargetSize() int { return p.targetSize }

// Render fits the page raster onto the canvas and encodes it as PNG.
func (p *Processor) Render(page image.Image) (*Canvas, error) {
	if page == nil {
		return nil, fmt.Errorf("geometry: nil page image")
	}
	bounds := page.Bounds()
	origW := float64(bounds.Dx())
	origH := float64(bounds.Dy())

	canvas, scale, err := utils.FitToCanvas(page, p.targetSize)
	if err != nil {
		return nil, fmt.Errorf("geometry: rendering canvas: %w", err)
	}
	encoded, err := utils.EncodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("geometry: encoding canvas: %w", err)
	}

	return &Canvas{
		PNG:            encoded,
		Size:           p.targetSize,
		OriginalWidth:  origW,
		OriginalHeight: origH,
		Scale:          scale,
	}, nil
}

// Denormalize converts a canvas-space rectangle back to page pixel space.
// Coordinate pairs are sorted independently (a model may return reversed
// corners) and clamped into the page bounds. Only non-finite input is an
// error.
func Denormalize(rect layout.Rect, originalWidth, originalHeight, scale float64) (layout.Rect, error) {
	for _, v := range rect {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return layout.Rect{}, fmt.Errorf("geometry: non-finite coordinate in rect %v", rect)
		}
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return layout.Rect{}, fmt.Errorf("geometry: invalid scale %v", scale)
	}

	inv := 1.0 / scale
	xs := []float64{rect[0] * inv, rect[2] * inv}
	ys := []float64{rect[1] * inv, rect[3] * inv}
	sort.Float64s(xs)
	sort.Float64s(ys)

	out := layout.Rect{xs[0], ys[0], xs[1], ys[1]}
	return out.Clamp(originalWidth, originalHeight), nil
}

// DenormalizeRegions maps all regions from canvas space into the page's
// pixel space, keeping labels and indices intact. Regions with non-finite
// geometry are dropped.
func DenormalizeRegions(regions []layout.Region, c *Canvas) []layout.Region {
	out := make([]layout.Region, 0, len(regions))
	for _, r := range regions {
		rect, err := Denormalize(r.Rect, c.OriginalWidth, c.OriginalHeight, c.Scale)
		if err != nil {
			continue
		}
		r.Rect = rect
		out = append(out, r)
	}
	return out
}
