package pipeline

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/utils"
)

// regionColors maps common section types to distinct overlay colors.
var regionColors = map[string]color.RGBA{
	"header":    {R: 220, G: 60, B: 60, A: 255},
	"title":     {R: 220, G: 60, B: 60, A: 255},
	"paragraph": {R: 50, G: 120, B: 220, A: 255},
	"text":      {R: 50, G: 120, B: 220, A: 255},
	"table":     {R: 40, G: 160, B: 80, A: 255},
	"figure":    {R: 200, G: 140, B: 30, A: 255},
	"image":     {R: 200, G: 140, B: 30, A: 255},
	"footer":    {R: 140, G: 90, B: 190, A: 255},
	"list":      {R: 30, G: 170, B: 170, A: 255},
}

var defaultRegionColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}

func colorFor(regionType string) color.RGBA {
	if c, ok := regionColors[strings.ToLower(regionType)]; ok {
		return c
	}
	return defaultRegionColor
}

// RenderOverlay draws region boxes and type labels over the page raster
// and returns an RGBA copy. Failed regions are drawn like any other so
// the overlay still shows what was detected.
func RenderOverlay(img image.Image, regions []layout.Region) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, region := range regions {
		r := region.Rect
		rect := utils.RectFromFloats(r.X0(), r.Y0(), r.X1(), r.Y1())
		c := colorFor(region.Type)
		utils.DrawRect(dst, rect, c, 2)
		utils.DrawLabel(dst, region.Type, rect.Min.X, rect.Min.Y, c)
	}
	return dst
}
