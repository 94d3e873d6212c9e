package detector

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/NaserJamal/simple-ocr/internal/layout"
)

// rawRegion is one element of the model's JSON array before validation.
type rawRegion struct {
	Type string    `json:"type"`
	Rect []float64 `json:"rect"`
}

// ParseRegions turns the model's free-form reply into validated regions in
// canvas space. The reply is expected to contain a JSON array but arrives
// as unstructured text, so extraction runs in two stages with fixed
// precedence: first the outermost code fence is stripped if present, then
// the array is located between the first '[' and last ']'. Parse failures
// are logged and yield zero regions; they never fail the page.
func ParseRegions(response string, canvasSize float64, pageNum int) []layout.Region {
	cleaned := stripFence(strings.TrimSpace(response))
	cleaned = locateArray(cleaned)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		slog.Error("failed to parse detection response",
			"page", pageNum,
			"error", err,
			"snippet", snippet(response, 200))
		return nil
	}

	regions := make([]layout.Region, 0, len(elements))
	for i, elem := range elements {
		var raw rawRegion
		if err := json.Unmarshal(elem, &raw); err != nil {
			slog.Warn("dropping malformed region element", "page", pageNum, "element", i, "error", err)
			continue
		}
		rect, ok := validRect(raw, canvasSize, pageNum)
		if !ok {
			continue
		}
		region, err := layout.NewRegion(raw.Type, rect, len(regions))
		if err != nil {
			slog.Warn("dropping invalid region", "page", pageNum, "error", err)
			continue
		}
		regions = append(regions, region)
	}
	return regions
}

// stripFence removes the outermost triple-backtick fence. A language tag
// after the opening fence is discarded with the rest of its line.
func stripFence(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	start := strings.Index(s, "```")
	end := strings.LastIndex(s, "```")
	if end <= start {
		return s
	}
	inner := s[start+3 : end]
	if nl := strings.Index(inner, "\n"); nl >= 0 {
		// First line is a language tag or empty.
		firstLine := strings.TrimSpace(inner[:nl])
		if !strings.HasPrefix(firstLine, "[") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

// locateArray slices out the bracket-delimited JSON array when the text
// does not already start with one.
func locateArray(s string) string {
	if strings.HasPrefix(s, "[") {
		return s
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// validRect checks and, where possible, repairs the element's geometry.
// Label validation is left to layout.NewRegion.
func validRect(raw rawRegion, canvasSize float64, pageNum int) (layout.Rect, bool) {
	if len(raw.Rect) != 4 {
		slog.Warn("dropping region with malformed rect",
			"page", pageNum, "type", raw.Type, "rect_len", len(raw.Rect))
		return layout.Rect{}, false
	}

	rect := layout.Rect{raw.Rect[0], raw.Rect[1], raw.Rect[2], raw.Rect[3]}
	if !rect.Valid() {
		slog.Warn("dropping region with degenerate rect",
			"page", pageNum, "type", raw.Type, "rect", raw.Rect)
		return layout.Rect{}, false
	}

	// Out-of-bounds rectangles are clamped rather than rejected: salvaging
	// partially-correct model output beats losing the region.
	if !rect.InBounds(canvasSize, canvasSize) {
		slog.Warn("clamping out-of-bounds rect",
			"page", pageNum, "type", raw.Type, "rect", raw.Rect)
		rect = rect.Clamp(canvasSize, canvasSize)
		if !rect.Valid() {
			return layout.Rect{}, false
		}
	}

	return rect, true
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
