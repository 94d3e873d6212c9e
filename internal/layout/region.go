package layout

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle [x0, y0, x1, y1] with a top-left origin.
// Coordinates are canvas-space right after detection and pixel-space once
// denormalized.
type Rect [4]float64

// X0 returns the left edge.
func (r Rect) X0() float64 { return r[0] }

// Y0 returns the top edge.
func (r Rect) Y0() float64 { return r[1] }

// X1 returns the right edge.
func (r Rect) X1() float64 { return r[2] }

// Y1 returns the bottom edge.
func (r Rect) Y1() float64 { return r[3] }

// Width returns x1-x0.
func (r Rect) Width() float64 { return r[2] - r[0] }

// Height returns y1-y0.
func (r Rect) Height() float64 { return r[3] - r[1] }

// Valid reports whether the rectangle has positive area and finite coordinates.
func (r Rect) Valid() bool {
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r[0] < r[2] && r[1] < r[3]
}

// Clamp limits all coordinates to [0,maxX] x [0,maxY].
func (r Rect) Clamp(maxX, maxY float64) Rect {
	return Rect{
		clamp(r[0], 0, maxX),
		clamp(r[1], 0, maxY),
		clamp(r[2], 0, maxX),
		clamp(r[3], 0, maxY),
	}
}

// InBounds reports whether all coordinates already lie within [0,maxX] x [0,maxY].
func (r Rect) InBounds(maxX, maxY float64) bool {
	for i, v := range r {
		limit := maxY
		if i%2 == 0 {
			limit = maxX
		}
		if v < 0 || v > limit {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Region is a labeled rectangular zone of a page. Text and Error stay empty
// until extraction runs; Index is assigned at detection time and restores
// deterministic ordering after concurrent extraction.
type Region struct {
	Type  string `json:"type"`
	Rect  Rect   `json:"rect"`
	Text  string `json:"text,omitempty"`
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
}

// NewRegion validates label and geometry at construction time.
func NewRegion(regionType string, rect Rect, index int) (Region, error) {
	if regionType == "" {
		return Region{}, fmt.Errorf("region %d: empty type", index)
	}
	if !rect.Valid() {
		return Region{}, fmt.Errorf("region %d (%s): invalid rect %v", index, regionType, rect)
	}
	return Region{Type: regionType, Rect: rect, Index: index}, nil
}
