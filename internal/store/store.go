// Package store persists extraction runs on disk and maintains an index
// of past runs so later invocations can reuse cached results.
//
// Each run gets its own directory under the output root, named
// extraction_<id>_<timestamp>, holding sections.json (the detected
// regions with extracted text), extracted_text.txt, and optionally
// document.md. A single extraction_index.json at the root records every
// finalized run, newest last.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NaserJamal/simple-ocr/internal/layout"
)

const (
	indexFileName    = "extraction_index.json"
	sectionsFileName = "sections.json"
	textFileName     = "extracted_text.txt"
	documentFileName = "document.md"

	dirTimeLayout = "20060102_150405"
)

// Record describes one finalized extraction run in the index.
type Record struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Dir       string         `json:"dir"`
	Source    string         `json:"source"`
	Request   string         `json:"request,omitempty"`
	Summary   layout.Summary `json:"summary"`
}

// Store manages extraction run directories under a single output root.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the output root directory.
func (s *Store) Root() string {
	return s.root
}

// Run is an in-progress extraction run. Nothing is visible in the index
// until Finalize; a crashed run leaves only its orphaned directory behind.
type Run struct {
	store     *Store
	id        string
	dir       string
	timestamp time.Time
}

// Begin allocates a run directory for a new extraction of source.
func (s *Store) Begin(source, request string) (*Run, error) {
	now := time.Now()
	id := uuid.NewString()[:8]
	name := fmt.Sprintf("extraction_%s_%s", id, now.Format(dirTimeLayout))
	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	slog.Info("started extraction run", "id", id, "dir", dir, "source", source)
	return &Run{store: s, id: id, dir: dir, timestamp: now}, nil
}

// ID returns the short run identifier.
func (r *Run) ID() string {
	return r.id
}

// Dir returns the run directory path.
func (r *Run) Dir() string {
	return r.dir
}

// SaveRegions writes the per-page regions to sections.json.
func (r *Run) SaveRegions(pages []layout.PageResult) error {
	return writeJSON(filepath.Join(r.dir, sectionsFileName), pages)
}

// SaveText writes the plain-text rendering of the extraction.
func (r *Run) SaveText(text string) error {
	path := filepath.Join(r.dir, textFileName)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", textFileName, err)
	}
	return nil
}

// SaveDocument writes the reconstructed markdown document.
func (r *Run) SaveDocument(doc string) error {
	path := filepath.Join(r.dir, documentFileName)
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", documentFileName, err)
	}
	return nil
}

// Finalize appends the run to the extraction index, making it visible to
// LoadLatest and ListRecords.
func (r *Run) Finalize(source, request string, summary layout.Summary) (Record, error) {
	rec := Record{
		ID:        r.id,
		Timestamp: r.timestamp.Format(time.RFC3339),
		Dir:       filepath.Base(r.dir),
		Source:    source,
		Request:   request,
		Summary:   summary,
	}

	records, err := r.store.readIndex()
	if err != nil {
		// A corrupt index is rebuilt rather than blocking the run.
		slog.Warn("resetting unreadable extraction index", "error", err)
		records = nil
	}
	records = append(records, rec)
	if err := writeJSON(filepath.Join(r.store.root, indexFileName), records); err != nil {
		return Record{}, err
	}
	slog.Info("finalized extraction run", "id", r.id, "regions", summary.TotalRegions)
	return rec, nil
}

// ListRecords returns all indexed runs, oldest first. A missing index
// yields an empty list.
func (s *Store) ListRecords() ([]Record, error) {
	records, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LoadLatest returns the most recent indexed run for source along with
// its saved regions. A missing or unreadable index, or a record whose
// run directory has since been deleted, reports ok=false rather than an
// error so callers can fall through to a fresh extraction.
func (s *Store) LoadLatest(source string) (Record, []layout.PageResult, bool) {
	records, err := s.readIndex()
	if err != nil {
		slog.Warn("extraction index unreadable, ignoring cache", "error", err)
		return Record{}, nil, false
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Source != source {
			continue
		}
		pages, err := s.loadRegions(records[i])
		if err != nil {
			slog.Warn("cached run unreadable, ignoring",
				"id", records[i].ID, "error", err)
			return Record{}, nil, false
		}
		return records[i], pages, true
	}
	return Record{}, nil, false
}

func (s *Store) loadRegions(rec Record) ([]layout.PageResult, error) {
	path := filepath.Join(s.root, rec.Dir, sectionsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sectionsFileName, err)
	}
	var pages []layout.PageResult
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sectionsFileName, err)
	}
	return pages, nil
}

func (s *Store) readIndex() ([]Record, error) {
	data, err := os.ReadFile(filepath.Join(s.root, indexFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", indexFileName, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", indexFileName, err)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
