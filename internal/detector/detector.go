// Package detector finds labeled layout regions on a page by sending the
// rendered canvas to the vision model and parsing its free-form reply into
// validated rectangles.
package detector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

// Config holds configuration for region detection.
type Config struct {
	// CanvasSize is the side length of the square canvas the model sees.
	CanvasSize int
	// Request optionally narrows detection to regions matching a user's
	// free-text description instead of the whole layout.
	Request     string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns detection defaults.
func DefaultConfig() Config {
	return Config{
		CanvasSize:  1001,
		MaxTokens:   4096,
		Temperature: 0.1,
	}
}

// Detector issues one detection call per page.
type Detector struct {
	client vlm.Client
	cfg    Config
}

// NewDetector creates a detector using the given model client.
func NewDetector(client vlm.Client, cfg Config) *Detector {
	if cfg.CanvasSize <= 0 {
		cfg.CanvasSize = DefaultConfig().CanvasSize
	}
	return &Detector{client: client, cfg: cfg}
}

// Detect sends the canvas image to the model and returns validated regions
// in canvas space, indexed in response order. A transport failure is
// returned as an error; an unparseable reply is not — it logs and yields
// zero regions so the page can continue.
func (d *Detector) Detect(ctx context.Context, canvasPNG []byte, pageNum int) ([]layout.Region, error) {
	userPrompt := d.buildUserPrompt(pageNum)

	slog.Info("detecting regions",
		"page", pageNum,
		"request", d.cfg.Request)

	response, err := d.client.Complete(ctx, vlm.Request{
		System:      detectionSystemPrompt,
		User:        userPrompt,
		ImagePNG:    canvasPNG,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("detector: page %d: %w", pageNum, err)
	}

	slog.Debug("detection response received", "page", pageNum, "chars", len(response))

	regions := ParseRegions(response, float64(d.cfg.CanvasSize), pageNum)
	slog.Info("regions detected", "page", pageNum, "count", len(regions))
	return regions, nil
}
