package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaserJamal/simple-ocr/internal/layout"
)

func samplePages() []layout.PageResult {
	return []layout.PageResult{
		{
			Page: 0,
			Regions: []layout.Region{
				{Type: "header", Rect: layout.Rect{0, 0, 100, 20}, Text: "Title", Index: 0},
				{Type: "paragraph", Rect: layout.Rect{0, 30, 100, 90}, Text: "Body text", Index: 1},
			},
		},
	}
}

func TestBeginCreatesRunDirectory(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	run, err := s.Begin("doc.pdf", "")
	require.NoError(t, err)

	info, err := os.Stat(run.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Regexp(t,
		regexp.MustCompile(`^extraction_[0-9a-f]{8}_\d{8}_\d{6}$`),
		filepath.Base(run.Dir()))
	assert.Len(t, run.ID(), 8)
}

func TestFinalizeAppendsToIndex(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	pages := samplePages()
	for _, source := range []string{"a.pdf", "b.pdf"} {
		run, err := s.Begin(source, "")
		require.NoError(t, err)
		require.NoError(t, run.SaveRegions(pages))
		_, err = run.Finalize(source, "", layout.Summarize(pages))
		require.NoError(t, err)
	}

	records, err := s.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.pdf", records[0].Source)
	assert.Equal(t, "b.pdf", records[1].Source)
	assert.Equal(t, 2, records[0].Summary.TotalRegions)
}

func TestLoadLatestReturnsNewestMatch(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := s.Begin("doc.pdf", "")
	require.NoError(t, err)
	require.NoError(t, first.SaveRegions(samplePages()))
	_, err = first.Finalize("doc.pdf", "", layout.Summarize(samplePages()))
	require.NoError(t, err)

	newer := samplePages()
	newer[0].Regions = newer[0].Regions[:1]
	second, err := s.Begin("doc.pdf", "the header")
	require.NoError(t, err)
	require.NoError(t, second.SaveRegions(newer))
	_, err = second.Finalize("doc.pdf", "the header", layout.Summarize(newer))
	require.NoError(t, err)

	rec, pages, ok := s.LoadLatest("doc.pdf")
	require.True(t, ok)
	assert.Equal(t, second.ID(), rec.ID)
	assert.Equal(t, "the header", rec.Request)
	require.Len(t, pages, 1)
	assert.Len(t, pages[0].Regions, 1)
}

func TestLoadLatestMissingIndex(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, ok := s.LoadLatest("doc.pdf")
	assert.False(t, ok)
}

func TestLoadLatestUnknownSource(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	run, err := s.Begin("other.pdf", "")
	require.NoError(t, err)
	require.NoError(t, run.SaveRegions(samplePages()))
	_, err = run.Finalize("other.pdf", "", layout.Summarize(samplePages()))
	require.NoError(t, err)

	_, _, ok := s.LoadLatest("doc.pdf")
	assert.False(t, ok)
}

func TestLoadLatestCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), []byte("{not json"), 0o600))

	_, _, ok := s.LoadLatest("doc.pdf")
	assert.False(t, ok)
}

func TestFinalizeRecoversFromCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFileName), []byte("{not json"), 0o600))

	run, err := s.Begin("doc.pdf", "")
	require.NoError(t, err)
	require.NoError(t, run.SaveRegions(samplePages()))
	_, err = run.Finalize("doc.pdf", "", layout.Summarize(samplePages()))
	require.NoError(t, err)

	records, err := s.ListRecords()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadLatestDeletedRunDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	run, err := s.Begin("doc.pdf", "")
	require.NoError(t, err)
	require.NoError(t, run.SaveRegions(samplePages()))
	_, err = run.Finalize("doc.pdf", "", layout.Summarize(samplePages()))
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(run.Dir()))

	_, _, ok := s.LoadLatest("doc.pdf")
	assert.False(t, ok)
}

func TestSaveFilesRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	run, err := s.Begin("doc.pdf", "")
	require.NoError(t, err)

	require.NoError(t, run.SaveRegions(samplePages()))
	require.NoError(t, run.SaveText("PAGE 1\nTitle"))
	require.NoError(t, run.SaveDocument("# Title\n"))

	data, err := os.ReadFile(filepath.Join(run.Dir(), sectionsFileName))
	require.NoError(t, err)
	var pages []layout.PageResult
	require.NoError(t, json.Unmarshal(data, &pages))
	assert.Equal(t, samplePages(), pages)

	text, err := os.ReadFile(filepath.Join(run.Dir(), textFileName))
	require.NoError(t, err)
	assert.Equal(t, "PAGE 1\nTitle", string(text))

	doc, err := os.ReadFile(filepath.Join(run.Dir(), documentFileName))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(doc))
}
