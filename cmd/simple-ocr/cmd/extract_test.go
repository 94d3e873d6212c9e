package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaserJamal/simple-ocr/internal/config"
	"github.com/NaserJamal/simple-ocr/internal/layout"
	"github.com/NaserJamal/simple-ocr/internal/pipeline"
	"github.com/NaserJamal/simple-ocr/internal/store"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

func TestParseRegionIndices(t *testing.T) {
	indices, err := parseRegionIndices("0, 2,5")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5}, indices)

	_, err = parseRegionIndices("1,x")
	assert.Error(t, err)

	_, err = parseRegionIndices("-1")
	assert.Error(t, err)
}

func TestCollectExtractOptionsDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := extractCmd

	opts, err := collectExtractOptions(cfg, cmd)
	require.NoError(t, err)
	assert.Equal(t, cfg.Extract.Workers, opts.workers)
	assert.Equal(t, "text", opts.format)
	assert.False(t, opts.reuse)
	assert.Empty(t, opts.regions)
}

func TestCollectExtractOptionsRegionsRequireReuse(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := extractCmd
	require.NoError(t, cmd.Flags().Set("regions", "0,1"))
	t.Cleanup(func() {
		_ = cmd.Flags().Set("regions", "")
		_ = cmd.Flags().Set("reuse", "false")
	})

	_, err := collectExtractOptions(cfg, cmd)
	assert.ErrorContains(t, err, "--regions requires --reuse")

	require.NoError(t, cmd.Flags().Set("reuse", "true"))
	opts, err := collectExtractOptions(cfg, cmd)
	require.NoError(t, err)
	assert.True(t, opts.reuse)
	assert.Equal(t, []int{0, 1}, opts.regions)
}

type noopClient struct{}

func (noopClient) Complete(context.Context, vlm.Request) (string, error) { return "", nil }

func promptPipeline(t *testing.T, withRun bool) *pipeline.Pipeline {
	t.Helper()
	s, err := store.NewStore(t.TempDir())
	require.NoError(t, err)

	if withRun {
		run, err := s.Begin("doc.pdf", "")
		require.NoError(t, err)
		pages := []layout.PageResult{{Page: 0, Regions: []layout.Region{
			{Type: "header", Rect: layout.Rect{0, 0, 10, 10}, Text: "t", Index: 0},
		}}}
		require.NoError(t, run.SaveRegions(pages))
		_, err = run.Finalize("doc.pdf", "", layout.Summarize(pages))
		require.NoError(t, err)
	}

	p, err := pipeline.NewBuilder().WithClient(noopClient{}).WithStore(s).Build()
	require.NoError(t, err)
	return p
}

func TestPromptForReuseAccepts(t *testing.T) {
	p := promptPipeline(t, true)
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("y\n0\n"))
	cmd.SetOut(&strings.Builder{})

	opts := &extractOptions{}
	require.NoError(t, promptForReuse(cmd, p, "doc.pdf", opts))
	assert.True(t, opts.reuse)
	assert.Equal(t, []int{0}, opts.regions)
}

func TestPromptForReuseDeclined(t *testing.T) {
	p := promptPipeline(t, true)
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetOut(&strings.Builder{})

	opts := &extractOptions{}
	require.NoError(t, promptForReuse(cmd, p, "doc.pdf", opts))
	assert.False(t, opts.reuse)
}

func TestPromptForReuseNoCachedRun(t *testing.T) {
	p := promptPipeline(t, false)
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&strings.Builder{})

	opts := &extractOptions{}
	require.NoError(t, promptForReuse(cmd, p, "doc.pdf", opts))
	assert.False(t, opts.reuse)
}

func TestCollectExtractOptionsValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := extractCmd

	require.NoError(t, cmd.Flags().Set("format", "xml"))
	t.Cleanup(func() { _ = cmd.Flags().Set("format", "text") })
	_, err := collectExtractOptions(cfg, cmd)
	assert.ErrorContains(t, err, "invalid output format")

	require.NoError(t, cmd.Flags().Set("format", "json"))
	require.NoError(t, cmd.Flags().Set("pages", "5-2"))
	t.Cleanup(func() { _ = cmd.Flags().Set("pages", "") })
	_, err = collectExtractOptions(cfg, cmd)
	assert.ErrorContains(t, err, "start page")
}
