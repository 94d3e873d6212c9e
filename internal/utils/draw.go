package utils

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawRect draws an axis-aligned rectangle outline into dst.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	for t := range thickness {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
	}
	for t := range thickness {
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}

// DrawLabel renders text at (x, y) on a white backing rectangle so labels
// stay readable over page content. The label is placed just above the anchor
// when there is room, otherwise just below it.
func DrawLabel(dst *image.RGBA, label string, x, y int, col color.Color) {
	if label == "" {
		return
	}
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, label).Ceil()
	textHeight := face.Metrics().Height.Ceil()

	labelY := y - textHeight - 2
	if labelY < dst.Bounds().Min.Y {
		labelY = y + 2
	}
	labelX := x + 2

	backing := image.Rect(labelX-2, labelY-2, labelX+textWidth+2, labelY+textHeight+2)
	backing = backing.Intersect(dst.Bounds())
	draw.Draw(dst, backing, &image.Uniform{color.RGBA{255, 255, 255, 220}}, image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: face,
		Dot:  fixed.P(labelX, labelY+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(label)
}
