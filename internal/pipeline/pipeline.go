// Package pipeline wires geometry, detection, extraction, storage and
// reconstruction into the end-to-end document flow.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/NaserJamal/simple-ocr/internal/config"
	"github.com/NaserJamal/simple-ocr/internal/detector"
	"github.com/NaserJamal/simple-ocr/internal/extractor"
	"github.com/NaserJamal/simple-ocr/internal/geometry"
	"github.com/NaserJamal/simple-ocr/internal/pdf"
	"github.com/NaserJamal/simple-ocr/internal/reconstruct"
	"github.com/NaserJamal/simple-ocr/internal/store"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

// Config holds configuration for the extraction pipeline and its components.
type Config struct {
	CanvasSize  int
	Detector    detector.Config
	Extractor   extractor.Config
	Reconstruct reconstruct.Config

	// ReconstructEnabled controls the optional document reassembly step.
	ReconstructEnabled bool
	// Request optionally restricts detection and extraction to sections
	// matching a free-text description.
	Request string
	// PageRange selects PDF pages, e.g. "1-3,7". Empty means all.
	PageRange string
	// OverlayEnabled saves an annotated raster per page into the run dir.
	OverlayEnabled bool

	Progress ProgressCallback
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		CanvasSize:     config.DefaultCanvasSize,
		Detector:       detector.DefaultConfig(),
		Extractor:      extractor.DefaultConfig(),
		Reconstruct:    reconstruct.DefaultConfig(),
		OverlayEnabled: true,
		Progress:       NoOpProgressCallback{},
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	client     vlm.Client
	rasterizer pdf.Rasterizer
	store      *store.Store
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig(), rasterizer: pdf.FileRasterizer{}}
}

// WithClient sets the vision model client used for every model call.
func (b *Builder) WithClient(client vlm.Client) *Builder {
	b.client = client
	return b
}

// WithRasterizer overrides how documents are turned into page images.
func (b *Builder) WithRasterizer(r pdf.Rasterizer) *Builder {
	if r != nil {
		b.rasterizer = r
	}
	return b
}

// WithStore sets the extraction store for run persistence.
func (b *Builder) WithStore(s *store.Store) *Builder {
	b.store = s
	return b
}

// WithCanvasSize sets the square canvas edge used for detection.
func (b *Builder) WithCanvasSize(size int) *Builder {
	if size > 0 {
		b.cfg.CanvasSize = size
		b.cfg.Detector.CanvasSize = size
	}
	return b
}

// WithWorkers sets the number of concurrent extraction calls.
func (b *Builder) WithWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Extractor.Workers = workers
	}
	return b
}

// WithRequest targets detection and extraction at specific sections.
func (b *Builder) WithRequest(request string) *Builder {
	b.cfg.Request = request
	b.cfg.Detector.Request = request
	b.cfg.Extractor.Request = request
	return b
}

// WithPageRange restricts PDF processing to the given pages.
func (b *Builder) WithPageRange(pageRange string) *Builder {
	b.cfg.PageRange = pageRange
	return b
}

// WithReconstruction toggles the markdown reassembly step.
func (b *Builder) WithReconstruction(enabled bool) *Builder {
	b.cfg.ReconstructEnabled = enabled
	return b
}

// WithOverlay toggles saving annotated page rasters.
func (b *Builder) WithOverlay(enabled bool) *Builder {
	b.cfg.OverlayEnabled = enabled
	return b
}

// WithProgressCallback sets the progress reporter for page processing.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	if callback != nil {
		b.cfg.Progress = callback
	}
	return b
}

// FromConfig applies the application configuration to the builder.
func (b *Builder) FromConfig(cfg *config.Config) *Builder {
	b.WithCanvasSize(cfg.Canvas.TargetSize)
	b.WithWorkers(cfg.Extract.Workers)
	b.WithReconstruction(cfg.Reconstruct.Enabled)
	b.WithOverlay(cfg.Output.OverlayEnabled)
	b.cfg.Detector.MaxTokens = cfg.Detect.MaxTokens
	b.cfg.Detector.Temperature = cfg.Detect.Temperature
	b.cfg.Extractor.MaxTokens = cfg.Extract.MaxTokens
	b.cfg.Extractor.Temperature = cfg.Extract.Temperature
	b.cfg.Reconstruct.MaxTokens = cfg.Reconstruct.MaxTokens
	b.cfg.Reconstruct.Temperature = cfg.Reconstruct.Temperature
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that required collaborators are present.
func (b *Builder) Validate() error {
	if b.client == nil {
		return errors.New("model client is required")
	}
	if b.store == nil {
		return errors.New("extraction store is required")
	}
	if b.cfg.CanvasSize <= 0 {
		return fmt.Errorf("canvas size must be positive, got %d", b.cfg.CanvasSize)
	}
	return nil
}

// Pipeline runs document layout extraction end to end.
type Pipeline struct {
	cfg           Config
	store         *store.Store
	rasterizer    pdf.Rasterizer
	geometry      *geometry.Processor
	detector      *detector.Detector
	extractor     *extractor.Extractor
	reconstructor *reconstruct.Reconstructor
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	geom := geometry.NewProcessor(b.cfg.CanvasSize)
	// Detection parsing clamps against the same canvas the pages are
	// rendered on, whatever the component config says.
	detectorCfg := b.cfg.Detector
	detectorCfg.CanvasSize = geom.TargetSize()
	return &Pipeline{
		cfg:           b.cfg,
		store:         b.store,
		rasterizer:    b.rasterizer,
		geometry:      geom,
		detector:      detector.NewDetector(b.client, detectorCfg),
		extractor:     extractor.NewExtractor(b.client, b.cfg.Extractor),
		reconstructor: reconstruct.NewReconstructor(b.client, b.cfg.Reconstruct),
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Store returns the extraction store the pipeline writes to.
func (p *Pipeline) Store() *store.Store { return p.store }
