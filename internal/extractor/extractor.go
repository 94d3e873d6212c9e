// Package extractor runs one OCR model call per detected region, fanning
// the calls out over a bounded worker pool. Each region succeeds or fails
// on its own; a bad crop or a timed-out call never takes down its siblings
// or the page.
package extractor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/utils"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

// Config holds configuration for per-region text extraction.
type Config struct {
	// Workers bounds concurrent OCR calls. OCR latency dominates the run,
	// so this is the main throughput knob.
	Workers int
	// Request optionally biases extraction toward the user's intent.
	Request     string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns extraction defaults.
func DefaultConfig() Config {
	return Config{
		Workers:     5,
		MaxTokens:   4096,
		Temperature: 0.0,
	}
}

// Extractor crops regions from the page raster and extracts their text.
type Extractor struct {
	client vlm.Client
	cfg    Config
}

// NewExtractor creates an extractor using the given model client.
func NewExtractor(client vlm.Client, cfg Config) *Extractor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Extractor{client: client, cfg: cfg}
}

type regionJob struct {
	region layout.Region
}

// ExtractAll extracts text for every region concurrently. Regions must
// already be in page pixel space. The returned slice always has one entry
// per input region, sorted by detection-time index regardless of
// completion order; failed regions carry empty text and an error message.
func (e *Extractor) ExtractAll(
	ctx context.Context, page image.Image, regions []layout.Region, pageNum int,
) []layout.Region {
	if len(regions) == 0 {
		slog.Warn("no regions to extract", "page", pageNum)
		return nil
	}

	slog.Info("starting text extraction",
		"page", pageNum,
		"regions", len(regions),
		"workers", e.cfg.Workers)

	jobs := make(chan regionJob, len(regions))
	results := make(chan layout.Region, len(regions))

	var wg sync.WaitGroup
	for range e.cfg.Workers {
		wg.Add(1)
		go e.worker(ctx, page, pageNum, jobs, results, &wg)
	}

	for _, r := range regions {
		jobs <- regionJob{region: r}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]layout.Region, 0, len(regions))
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	slog.Info("completed text extraction", "page", pageNum, "regions", len(out))
	return out
}

// worker consumes every queued job even after cancellation, tagging
// unprocessed regions with the context error so the output stays complete.
func (e *Extractor) worker(
	ctx context.Context,
	page image.Image,
	pageNum int,
	jobs <-chan regionJob,
	results chan<- layout.Region,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for job := range jobs {
		region := job.region

		if err := ctx.Err(); err != nil {
			region.Text = ""
			region.Error = err.Error()
			results <- region
			continue
		}

		text, err := e.extractOne(ctx, page, region, pageNum)
		if err != nil {
			slog.Error("region extraction failed",
				"page", pageNum, "region", region.Index, "type", region.Type, "error", err)
			region.Text = ""
			region.Error = err.Error()
		} else {
			slog.Info("region extracted",
				"page", pageNum, "region", region.Index, "chars", len(text))
			region.Text = text
		}
		results <- region
	}
}

func (e *Extractor) extractOne(
	ctx context.Context, page image.Image, region layout.Region, pageNum int,
) (string, error) {
	r := region.Rect
	if !r.Valid() {
		return "", fmt.Errorf("invalid coordinates %v", r)
	}

	crop, err := utils.CropRect(page, utils.RectFromFloats(r.X0(), r.Y0(), r.X1(), r.Y1()))
	if err != nil {
		return "", fmt.Errorf("cropping region %d on page %d: %w", region.Index, pageNum, err)
	}
	encoded, err := utils.EncodePNG(crop)
	if err != nil {
		return "", fmt.Errorf("encoding region %d on page %d: %w", region.Index, pageNum, err)
	}

	response, err := e.client.Complete(ctx, vlm.Request{
		System:      ocrSystemPrompt,
		User:        e.buildOCRPrompt(region.Type),
		ImagePNG:    encoded,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return utils.CleanModelText(response), nil
}
