package testutil

import (
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePage(t *testing.T) {
	cfg := DefaultPageConfig()
	img := GeneratePage(cfg)

	assert.Equal(t, cfg.Width, img.Bounds().Dx())
	assert.Equal(t, cfg.Height, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(5, 5))

	// Text drawing must leave some dark pixels inside the header rect.
	dark := 0
	for y := 40; y < 90; y++ {
		for x := 50; x < 560; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				dark++
			}
		}
	}
	assert.Positive(t, dark)
}

func TestSavePage(t *testing.T) {
	path := SavePage(t, DefaultPageConfig(), t.TempDir(), "page.png")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRegions(t *testing.T) {
	regions := DefaultPageConfig().Regions()
	require.Len(t, regions, 3)
	assert.Equal(t, "header", regions[0].Type)
	assert.Equal(t, 2, regions[2].Index)
	assert.Empty(t, regions[1].Text)
}
