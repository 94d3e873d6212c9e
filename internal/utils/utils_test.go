package utils

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFitToCanvasLandscape(t *testing.T) {
	img := solidImage(200, 100, color.Black)

	canvas, scale, err := FitToCanvas(img, 50)
	require.NoError(t, err)

	assert.Equal(t, 50, canvas.Bounds().Dx())
	assert.Equal(t, 50, canvas.Bounds().Dy())
	assert.InDelta(t, 0.25, scale, 1e-9)

	// Content occupies the top-left; bottom half is white padding.
	r, g, b, _ := canvas.At(10, 10).RGBA()
	assert.Zero(t, r|g|b, "content area should be black")
	r, g, b, _ = canvas.At(10, 40).RGBA()
	assert.Equal(t, uint32(0xffff), r, "padding should be white")
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestFitToCanvasErrors(t *testing.T) {
	_, _, err := FitToCanvas(nil, 100)
	assert.Error(t, err)

	_, _, err = FitToCanvas(solidImage(10, 10, color.White), 0)
	assert.Error(t, err)
}

func TestCropRect(t *testing.T) {
	img := solidImage(100, 100, color.White)

	cropped, err := CropRect(img, image.Rect(10, 10, 60, 40))
	require.NoError(t, err)
	assert.Equal(t, 50, cropped.Bounds().Dx())
	assert.Equal(t, 30, cropped.Bounds().Dy())

	// Partially out of bounds gets intersected.
	cropped, err = CropRect(img, image.Rect(80, 80, 150, 150))
	require.NoError(t, err)
	assert.Equal(t, 20, cropped.Bounds().Dx())

	// Fully outside the image is an error.
	_, err = CropRect(img, image.Rect(200, 200, 300, 300))
	assert.Error(t, err)
}

func TestRectFromFloats(t *testing.T) {
	r := RectFromFloats(1.2, 2.8, 10.1, 20.9)
	assert.Equal(t, image.Rect(1, 2, 11, 21), r)
}

func TestSaveAndLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	require.NoError(t, SavePNG(solidImage(12, 8, color.White), path))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestLoadImageErrors(t *testing.T) {
	_, err := LoadImage("")
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("scan.PNG"))
	assert.True(t, IsSupportedImage("page.jpeg"))
	assert.False(t, IsSupportedImage("doc.pdf"))
	assert.False(t, IsSupportedImage("notes.txt"))
}

func TestCleanModelText(t *testing.T) {
	in := "​  Invoice\x00 Total\none\ttwo  \r\n"
	got := CleanModelText(in)
	assert.Equal(t, "Invoice Total\none\ttwo", got)

	assert.Empty(t, CleanModelText(""))
}

func TestDrawRectAndLabel(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	DrawRect(dst, image.Rect(10, 10, 50, 50), color.RGBA{255, 0, 0, 255}, 2)

	r, _, _, _ := dst.At(10, 30).RGBA()
	assert.Equal(t, uint32(0xffff), r, "left edge should be red")

	// Out-of-bounds rect must not panic.
	DrawRect(dst, image.Rect(-10, -10, 200, 200), color.White, 1)
	DrawLabel(dst, "0: heading", 10, 10, color.RGBA{0, 0, 255, 255})
	DrawLabel(dst, "", 10, 10, color.White)
}
