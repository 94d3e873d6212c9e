// Package reconstruct turns extracted region text back into a coherent
// markdown document with a single model call. Reconstruction is a
// best-effort final step: any failure degrades to a plain assembly of
// the extracted text instead of failing the run.
package reconstruct

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/utils"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

const systemPrompt = "You are an expert document formatter. You receive " +
	"text fragments extracted from a document by OCR, labeled with their " +
	"section type and page. Reassemble them into a single continuous " +
	"markdown document in natural reading order: impose a heading " +
	"hierarchy, deduplicate content repeated across fragments, and " +
	"preserve tables and lists. Fix obvious OCR artifacts but never " +
	"invent content. Return ONLY the markdown document."

// Config holds reconstruction model parameters.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns reconstruction defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 8192, Temperature: 0.2}
}

// Reconstructor assembles extracted regions into a markdown document.
type Reconstructor struct {
	client vlm.Client
	cfg    Config
}

// NewReconstructor creates a reconstructor using the given model client.
func NewReconstructor(client vlm.Client, cfg Config) *Reconstructor {
	return &Reconstructor{client: client, cfg: cfg}
}

// Reconstruct produces a markdown document from the extracted pages. It
// never returns an error: if the model call fails or yields nothing, the
// result is a fallback document that lists the raw extracted text under
// an error banner.
func (r *Reconstructor) Reconstruct(ctx context.Context, pages []layout.PageResult) string {
	gathered := gather(pages)
	if strings.TrimSpace(gathered) == "" {
		slog.Warn("no extracted text to reconstruct")
		return fallback(pages, "no text was extracted from the document")
	}

	slog.Info("reconstructing document", "chars", len(gathered))
	response, err := r.client.Complete(ctx, vlm.Request{
		System:      systemPrompt,
		User:        "Reconstruct the document from these extracted sections:\n\n" + gathered,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		slog.Error("document reconstruction failed", "error", err)
		return fallback(pages, err.Error())
	}

	doc := utils.CleanModelText(stripFence(response))
	if doc == "" {
		slog.Warn("reconstruction returned empty document")
		return fallback(pages, "the model returned an empty document")
	}
	return doc
}

// gather flattens successful regions into labeled fragments, skipping
// failed regions and empty text.
func gather(pages []layout.PageResult) string {
	var b strings.Builder
	for _, page := range pages {
		for _, region := range page.Regions {
			if region.Error != "" || strings.TrimSpace(region.Text) == "" {
				continue
			}
			fmt.Fprintf(&b, "[PAGE %d | %s]\n%s\n\n", page.Page+1, region.Type, region.Text)
		}
	}
	return b.String()
}

func fallback(pages []layout.PageResult, reason string) string {
	var b strings.Builder
	b.WriteString("# Document Reconstruction Failed\n\n")
	fmt.Fprintf(&b, "> %s\n\nThe raw extracted text follows.\n", reason)
	for _, page := range pages {
		fmt.Fprintf(&b, "\n## Page %d\n", page.Page+1)
		for _, region := range page.Regions {
			if region.Error != "" || strings.TrimSpace(region.Text) == "" {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", region.Type, region.Text)
		}
	}
	return b.String()
}

// stripFence removes a wrapping markdown code fence, which models add
// despite instructions, keeping interior fences intact.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	end := strings.LastIndex(trimmed, "```")
	if end <= 0 {
		return s
	}
	inner := trimmed[3:end]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(inner[:nl])
		if firstLine == "" || firstLine == "markdown" || firstLine == "md" {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
