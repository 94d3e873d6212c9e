package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/NaserJamal/simple-ocr/internal/geometry"
	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/pdf"
	"github.com/NaserJamal/simple-ocr/internal/store"
	"github.com/NaserJamal/simple-ocr/internal/utils"
)

// ErrNoCachedRun is returned when a cached rerun is requested for a
// document that has no indexed extraction.
var ErrNoCachedRun = errors.New("no cached extraction found")

// RunResult is the outcome of one pipeline run over a document.
type RunResult struct {
	Success bool                `json:"success"`
	ID      string              `json:"id,omitempty"`
	Dir     string              `json:"dir,omitempty"`
	Source  string              `json:"source"`
	Request string              `json:"request,omitempty"`
	Cached  bool                `json:"cached,omitempty"`
	Pages   []layout.PageResult `json:"pages,omitempty"`
	Summary layout.Summary      `json:"summary"`
	// Document is the reconstructed markdown when reconstruction ran.
	Document string `json:"document,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ProcessDocument runs the full flow over the document at path: rasterize,
// detect regions per page, extract text, persist the run and index it.
// Page-level failures are recorded in the result; only failures that
// prevent any processing at all return an error.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string) (*RunResult, error) {
	rasters, err := p.rasterizer.PageRasters(path, p.cfg.PageRange)
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", path, err)
	}

	run, err := p.store.Begin(path, p.cfg.Request)
	if err != nil {
		return nil, err
	}

	p.cfg.Progress.OnStart(len(rasters))
	pages := make([]layout.PageResult, 0, len(rasters))
	for i, raster := range rasters {
		page := p.processPage(ctx, raster, run.Dir())
		pages = append(pages, page)
		if page.Error != "" {
			p.cfg.Progress.OnError(i+1, fmt.Errorf("%s", page.Error))
		}
		p.cfg.Progress.OnProgress(i+1, len(rasters))
	}

	result := &RunResult{
		Success: true,
		ID:      run.ID(),
		Dir:     run.Dir(),
		Source:  path,
		Request: p.cfg.Request,
		Pages:   pages,
		Summary: layout.Summarize(pages),
	}

	if err := run.SaveRegions(pages); err != nil {
		return nil, err
	}
	if err := run.SaveText(ToText(pages)); err != nil {
		return nil, err
	}
	if p.cfg.ReconstructEnabled {
		result.Document = p.reconstructor.Reconstruct(ctx, pages)
		if err := run.SaveDocument(result.Document); err != nil {
			return nil, err
		}
	}
	if _, err := run.Finalize(path, p.cfg.Request, result.Summary); err != nil {
		return nil, err
	}

	p.cfg.Progress.OnComplete()
	return result, nil
}

// ProcessCached reruns text extraction for the most recent indexed run of
// the document, reusing its detected regions instead of calling the
// detection model again. regionIndices optionally restricts the rerun to
// specific regions per page; nil means all. The rerun gets its own run
// directory but is not added to the index, so the original run stays the
// cache source of record.
func (p *Pipeline) ProcessCached(
	ctx context.Context, path string, regionIndices []int,
) (*RunResult, error) {
	rec, cached, ok := p.store.LoadLatest(path)
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoCachedRun, path)
	}
	slog.Info("reusing cached regions", "id", rec.ID, "source", path)

	rasters, err := p.rasterizer.PageRasters(path, p.cfg.PageRange)
	if err != nil {
		return nil, fmt.Errorf("loading document %q: %w", path, err)
	}
	byPage := make(map[int]image.Image, len(rasters))
	for _, raster := range rasters {
		byPage[raster.Page] = raster.Image
	}

	run, err := p.store.Begin(path, p.cfg.Request)
	if err != nil {
		return nil, err
	}

	p.cfg.Progress.OnStart(len(cached))
	pages := make([]layout.PageResult, 0, len(cached))
	for i, prev := range cached {
		regions := selectRegions(prev.Regions, regionIndices)
		page := layout.PageResult{Page: prev.Page}
		raster, found := byPage[prev.Page]
		switch {
		case !found:
			page.Error = fmt.Sprintf("page %d missing from document", prev.Page+1)
		case len(regions) > 0:
			page.Regions = p.extractor.ExtractAll(ctx, raster, regions, prev.Page)
		}
		pages = append(pages, page)
		p.cfg.Progress.OnProgress(i+1, len(cached))
	}

	result := &RunResult{
		Success: true,
		ID:      run.ID(),
		Dir:     run.Dir(),
		Source:  path,
		Request: p.cfg.Request,
		Cached:  true,
		Pages:   pages,
		Summary: layout.Summarize(pages),
	}

	if err := run.SaveRegions(pages); err != nil {
		return nil, err
	}
	if err := run.SaveText(ToText(pages)); err != nil {
		return nil, err
	}
	if p.cfg.ReconstructEnabled {
		result.Document = p.reconstructor.Reconstruct(ctx, pages)
		if err := run.SaveDocument(result.Document); err != nil {
			return nil, err
		}
	}

	p.cfg.Progress.OnComplete()
	return result, nil
}

// processPage runs detect and extract for a single page. Failures are
// captured in the returned PageResult so other pages keep going.
func (p *Pipeline) processPage(
	ctx context.Context, raster pdf.PageImage, runDir string,
) layout.PageResult {
	result := layout.PageResult{Page: raster.Page}

	canvas, err := p.geometry.Render(raster.Image)
	if err != nil {
		slog.Error("page canvas rendering failed", "page", raster.Page, "error", err)
		result.Error = err.Error()
		return result
	}

	detected, err := p.detector.Detect(ctx, canvas.PNG, raster.Page)
	if err != nil {
		slog.Error("page detection failed", "page", raster.Page, "error", err)
		result.Error = err.Error()
		return result
	}
	if len(detected) == 0 {
		return result
	}

	regions := geometry.DenormalizeRegions(detected, canvas)
	result.Regions = p.extractor.ExtractAll(ctx, raster.Image, regions, raster.Page)

	if p.cfg.OverlayEnabled {
		overlay := RenderOverlay(raster.Image, result.Regions)
		name := fmt.Sprintf("page_%d_overlay.png", raster.Page+1)
		if err := utils.SavePNG(overlay, filepath.Join(runDir, name)); err != nil {
			slog.Warn("saving overlay failed", "page", raster.Page, "error", err)
		}
	}
	return result
}

// selectRegions filters regions to the requested detection indices,
// keeping input order. nil or empty indices selects everything.
func selectRegions(regions []layout.Region, indices []int) []layout.Region {
	if len(indices) == 0 {
		return regions
	}
	wanted := make(map[int]bool, len(indices))
	for _, idx := range indices {
		wanted[idx] = true
	}
	var out []layout.Region
	for _, r := range regions {
		if wanted[r.Index] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// LatestRecord exposes the most recent indexed run for a source document.
func (p *Pipeline) LatestRecord(path string) (store.Record, bool) {
	rec, _, ok := p.store.LoadLatest(path)
	return rec, ok
}
