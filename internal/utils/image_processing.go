package utils

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FitToCanvas resizes img to fit within a square canvas of the given side,
// preserving aspect ratio, and pastes it at the top-left corner over a white
// background. The unused right/bottom area stays blank padding. Returns the
// canvas and the single uniform scale factor applied to both axes.
func FitToCanvas(img image.Image, side int) (image.Image, float64, error) {
	if img == nil {
		return nil, 0, &ImageProcessingError{Operation: "fit", Err: errors.New("input image is nil")}
	}
	if side <= 0 {
		return nil, 0, &ImageProcessingError{Operation: "fit", Err: errors.New("canvas side must be > 0")}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, 0, &ImageProcessingError{Operation: "fit", Err: errors.New("empty input image")}
	}

	maxEdge := width
	if height > maxEdge {
		maxEdge = height
	}
	scale := float64(side) / float64(maxEdge)

	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))
	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)

	canvas := imaging.New(side, side, color.White)
	result := imaging.Paste(canvas, resized, image.Pt(0, 0))
	return result, scale, nil
}

// CropRect crops an image to the given rectangle, intersected with the
// image bounds.
func CropRect(img image.Image, rect image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("input image is nil")}
	}
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("crop rectangle outside image bounds")}
	}
	return imaging.Crop(img, rect), nil
}

// RectFromFloats converts float coordinates to an image.Rectangle, flooring
// the min corner and ceiling the max corner so partial pixels stay included.
func RectFromFloats(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x0)),
		int(math.Floor(y0)),
		int(math.Ceil(x1)),
		int(math.Ceil(y1)),
	)
}
