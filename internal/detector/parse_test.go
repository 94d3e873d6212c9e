package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaserJamal/simple-ocr/internal/layout"
)

const canvasSize = 1001.0

func TestParseRegionsPlainArray(t *testing.T) {
	regions := ParseRegions(`[{"type":"heading","rect":[1,1,5,5]}]`, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, "heading", regions[0].Type)
	assert.Equal(t, layout.Rect{1, 1, 5, 5}, regions[0].Rect)
	assert.Equal(t, 0, regions[0].Index)
}

func TestParseRegionsFencedWithLanguageTag(t *testing.T) {
	response := "```json\n[{\"type\":\"heading\",\"rect\":[1,1,5,5]}]\n```"
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, "heading", regions[0].Type)
	assert.Equal(t, layout.Rect{1, 1, 5, 5}, regions[0].Rect)
}

func TestParseRegionsFencedWithoutLanguageTag(t *testing.T) {
	response := "```\n[{\"type\":\"table\",\"rect\":[10,20,400,300]}]\n```"
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, "table", regions[0].Type)
}

func TestParseRegionsFenceInsideProse(t *testing.T) {
	response := "Here are the sections I found:\n```json\n" +
		`[{"type":"figure","rect":[5,5,100,100]}]` + "\n```\nLet me know if you need more."
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, "figure", regions[0].Type)
}

func TestParseRegionsProseAroundBareArray(t *testing.T) {
	response := `The layout contains: [{"type":"footer","rect":[0,900,1001,1001]}] as requested.`
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, "footer", regions[0].Type)
}

func TestParseRegionsGarbage(t *testing.T) {
	assert.Empty(t, ParseRegions("garbage {not json", canvasSize, 0))
	assert.Empty(t, ParseRegions("", canvasSize, 0))
	assert.Empty(t, ParseRegions(`{"type":"heading"}`, canvasSize, 0))
}

func TestParseRegionsDropsInvalidElements(t *testing.T) {
	response := `[
		{"type":"heading","rect":[1,1,5,5]},
		{"rect":[1,1,5,5]},
		{"type":"","rect":[1,1,5,5]},
		{"type":"empty-rect"},
		{"type":"reversed","rect":[5,5,1,1]},
		{"type":"short","rect":[1,2,3]},
		{"type":"strings","rect":["a","b","c","d"]},
		{"type":"table","rect":[10,10,200,200]}
	]`
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 2)
	assert.Equal(t, "heading", regions[0].Type)
	assert.Equal(t, "table", regions[1].Type)

	// Indices are reassigned over survivors so they stay dense.
	assert.Equal(t, 0, regions[0].Index)
	assert.Equal(t, 1, regions[1].Index)
}

func TestParseRegionsClampsOutOfBounds(t *testing.T) {
	response := `[{"type":"margin","rect":[-10,5,50,2000]}]`
	regions := ParseRegions(response, canvasSize, 0)
	require.Len(t, regions, 1)
	assert.Equal(t, layout.Rect{0, 5, 50, 1001}, regions[0].Rect)
}

func TestParseRegionsClampToDegenerateDrops(t *testing.T) {
	// Entirely outside the canvas: clamping collapses it to zero area.
	response := `[{"type":"ghost","rect":[2000,2000,3000,3000]}]`
	assert.Empty(t, ParseRegions(response, canvasSize, 0))
}

func TestStripFencePrecedence(t *testing.T) {
	// Outermost fence wins even when the content contains backticks.
	s := "```json\n[1]\n```"
	assert.Equal(t, "[1]", stripFence(s))

	// No fence: unchanged.
	assert.Equal(t, "[1]", stripFence("[1]"))

	// Single dangling fence: unchanged.
	assert.Equal(t, "``` [1]", stripFence("``` [1]"))
}
