// Package pdf turns input documents into per-page rasters. PDF pages are
// obtained through pdfcpu's image extraction, which works best with
// scanned documents where each page is a single full-page image; plain
// image files pass through as one-page documents.
package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/NaserJamal/simple-ocr/internal/utils"
)

// PageImage is the raster of a single document page. Page numbers are
// zero-based and dense in the returned slice, not the PDF's numbering.
type PageImage struct {
	Page  int
	Image image.Image
}

// Rasterizer loads per-page images from a document path. It exists so
// the pipeline can be tested without PDF fixtures.
type Rasterizer interface {
	PageRasters(path string, pageRange string) ([]PageImage, error)
}

// FileRasterizer reads PDFs and plain image files from disk.
type FileRasterizer struct{}

// PageRasters returns one raster per page of the document at path,
// ordered by page. For PDFs every page must yield at least one embedded
// image; the largest image on a page is taken as the page raster.
func (FileRasterizer) PageRasters(path string, pageRange string) ([]PageImage, error) {
	if utils.IsSupportedImage(path) {
		img, err := utils.LoadImage(path)
		if err != nil {
			return nil, err
		}
		return []PageImage{{Page: 0, Image: img}}, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("unsupported input file %q", path)
	}

	byPage, err := extractImages(path, pageRange)
	if err != nil {
		return nil, err
	}
	if len(byPage) == 0 {
		return nil, fmt.Errorf("no page images found in %q (vector-only PDFs are not supported)", path)
	}

	pageNums := make([]int, 0, len(byPage))
	for pageNum := range byPage {
		pageNums = append(pageNums, pageNum)
	}
	sort.Ints(pageNums)

	rasters := make([]PageImage, 0, len(pageNums))
	for i, pageNum := range pageNums {
		rasters = append(rasters, PageImage{Page: i, Image: largest(byPage[pageNum])})
	}
	return rasters, nil
}

// largest picks the image with the biggest pixel area. Scanned pages
// often carry small auxiliary images (logos, stamps) next to the page scan.
func largest(images []image.Image) image.Image {
	best := images[0]
	bestArea := best.Bounds().Dx() * best.Bounds().Dy()
	for _, img := range images[1:] {
		area := img.Bounds().Dx() * img.Bounds().Dy()
		if area > bestArea {
			best, bestArea = img, area
		}
	}
	return best
}

// extractImages extracts all embedded images from a PDF, grouped by the
// PDF's one-based page number.
func extractImages(filename string, pageRange string) (map[int][]image.Image, error) {
	pageNumbers, err := ParsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "simple-ocr-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	if len(pageNumbers) > 0 {
		pageStrings = make([]string, len(pageNumbers))
		for i, pageNum := range pageNumbers {
			pageStrings[i] = strconv.Itoa(pageNum)
		}
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("extracting images from PDF: %w", err)
	}

	return collectExtractedImages(tempDir)
}

// collectExtractedImages walks the given directory and groups images by
// page number, expecting pdfcpu's page_<num>_image_<idx>.<ext> naming.
func collectExtractedImages(dir string) (map[int][]image.Image, error) {
	result := make(map[int][]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			return nil
		}

		img, err := utils.LoadImage(path)
		if err != nil {
			// Skip unreadable images
			return nil
		}
		result[pageNum] = append(result[pageNum], img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parsePageFromFilename extracts the page number from a pdfcpu output
// filename such as page_1_image_1.png.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}

	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}

	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

// ParsePageRange parses a page selection like "1-5" or "1,3,5". An empty
// string selects all pages.
func ParsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses a single page token ("3") or a range token ("1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}
