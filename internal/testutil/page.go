// Package testutil generates synthetic document pages for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/utils"
)

// Section describes one text block to place on a synthetic page.
type Section struct {
	Type string
	Text string
	Rect layout.Rect
}

// PageConfig holds configuration for generating a synthetic page.
type PageConfig struct {
	Width    int
	Height   int
	Sections []Section
}

// DefaultPageConfig returns a letter-like page with a header, a body
// paragraph and a footer at known positions.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Width:  612, Height: 792,
		Sections: []Section{
			{Type: "header", Text: "Quarterly Report", Rect: layout.Rect{50, 40, 560, 90}},
			{Type: "paragraph", Text: "Revenue grew steadily this quarter.", Rect: layout.Rect{50, 140, 560, 400}},
			{Type: "footer", Text: "Page 1", Rect: layout.Rect{50, 740, 560, 780}},
		},
	}
}

// GeneratePage renders a white page with each section's text drawn inside
// its rectangle, so OCR-shaped assertions have known ground truth.
func GeneratePage(cfg PageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	for _, section := range cfg.Sections {
		drawer := &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{color.Black},
			Face: face,
			Dot: fixed.P(
				int(section.Rect.X0())+4,
				int(section.Rect.Y0())+face.Metrics().Ascent.Ceil()+4,
			),
		}
		drawer.DrawString(section.Text)
	}
	return img
}

// SavePage writes a generated page as PNG under dir and returns its path.
func SavePage(t *testing.T, cfg PageConfig, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, utils.SavePNG(GeneratePage(cfg), path))
	return path
}

// Regions returns the configured sections as detection-style regions
// with dense indices and no text.
func (cfg PageConfig) Regions() []layout.Region {
	regions := make([]layout.Region, len(cfg.Sections))
	for i, section := range cfg.Sections {
		regions[i] = layout.Region{Type: section.Type, Rect: section.Rect, Index: i}
	}
	return regions
}
