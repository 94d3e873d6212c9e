package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectValid(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"normal", Rect{0, 0, 10, 10}, true},
		{"reversed x", Rect{10, 0, 0, 10}, false},
		{"reversed y", Rect{0, 10, 10, 0}, false},
		{"zero area", Rect{5, 5, 5, 5}, false},
		{"nan", Rect{math.NaN(), 0, 10, 10}, false},
		{"inf", Rect{0, 0, math.Inf(1), 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rect.Valid())
		})
	}
}

func TestRectClamp(t *testing.T) {
	r := Rect{-10, 5, 50, 2000}
	got := r.Clamp(1001, 1001)
	assert.Equal(t, Rect{0, 5, 50, 1001}, got)
	assert.True(t, got.InBounds(1001, 1001))
}

func TestNewRegion(t *testing.T) {
	r, err := NewRegion("heading", Rect{1, 1, 5, 5}, 0)
	require.NoError(t, err)
	assert.Equal(t, "heading", r.Type)
	assert.Empty(t, r.Text)
	assert.Empty(t, r.Error)

	_, err = NewRegion("", Rect{1, 1, 5, 5}, 0)
	assert.Error(t, err)

	_, err = NewRegion("table", Rect{5, 1, 1, 5}, 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	pages := []PageResult{
		{Page: 0, Regions: []Region{
			{Type: "heading", Text: "Title", Index: 0},
			{Type: "paragraph", Text: "Body text", Index: 1},
		}},
		{Page: 1, Error: "detection failed"},
		{Page: 2, Regions: []Region{
			{Type: "heading", Text: "More", Index: 0},
		}},
	}

	s := Summarize(pages)
	assert.Equal(t, 3, s.TotalRegions)
	assert.Equal(t, 2, s.SuccessfulPages)
	assert.Equal(t, 1, s.FailedPages)
	assert.Equal(t, 2, s.RegionTypes["heading"])
	assert.Equal(t, 1, s.RegionTypes["paragraph"])
	assert.Equal(t, len("Title")+len("Body text")+len("More"), s.TotalCharacters)
}
