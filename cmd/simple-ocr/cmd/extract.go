package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NaserJamal/simple-ocr/internal/config"
	"github.com/NaserJamal/simple-ocr/internal/pdf"
	"github.com/NaserJamal/simple-ocr/internal/pipeline"
	"github.com/NaserJamal/simple-ocr/internal/store"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Detect document sections and extract their text",
	Long: `Extract runs the document through layout detection and per-region
text extraction, then stores the run under the output directory.

Works with PDFs and plain image files. PDF pages are read from embedded
page images, so scanned PDFs work best.

Examples:
  simple-ocr extract contract.pdf
  simple-ocr extract scan.png --request "the signature block"
  simple-ocr extract contract.pdf --pages 1-3 --reconstruct
  simple-ocr extract contract.pdf --reuse --regions 0,2`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("request", "r", "",
		"free-text description of the sections to extract (default: full layout)")
	extractCmd.Flags().IntP("workers", "w", 0,
		"concurrent extraction calls (default from config)")
	extractCmd.Flags().String("pages", "", "PDF page range to process (e.g. '1-5', '1,3,5')")
	extractCmd.Flags().Bool("reconstruct", false, "reassemble the extraction into a markdown document")
	extractCmd.Flags().Bool("reuse", false, "reuse the cached layout of the last indexed run")
	extractCmd.Flags().String("regions", "",
		"with --reuse, comma-separated region indices to re-extract (e.g. '0,2')")
	extractCmd.Flags().StringP("format", "f", "", "output format (text, json)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().Int("canvas-size", 0, "detection canvas edge in pixels")
	extractCmd.Flags().Bool("no-overlay", false, "skip saving annotated page overlays")
	extractCmd.Flags().Bool("progress", true, "show a console progress bar")
	extractCmd.Flags().BoolP("interactive", "i", false,
		"prompt to reuse the cached layout and pick regions")
}

// extractOptions holds the effective extract settings after merging the
// config file, environment, and CLI flags.
type extractOptions struct {
	request    string
	workers    int
	pages      string
	regions    []int
	reuse      bool
	format     string
	outputFile string
}

func collectExtractOptions(cfg *config.Config, cmd *cobra.Command) (*extractOptions, error) {
	opts := &extractOptions{
		workers: cfg.Extract.Workers,
		format:  cfg.Output.Format,
	}

	opts.request, _ = cmd.Flags().GetString("request")
	opts.pages, _ = cmd.Flags().GetString("pages")
	opts.reuse, _ = cmd.Flags().GetBool("reuse")
	if cmd.Flags().Changed("workers") {
		opts.workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("format") {
		opts.format, _ = cmd.Flags().GetString("format")
	}
	opts.outputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		opts.outputFile, _ = cmd.Flags().GetString("output")
	}

	if opts.pages != "" {
		if _, err := pdf.ParsePageRange(opts.pages); err != nil {
			return nil, err
		}
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("invalid output format: %s (must be text or json)", opts.format)
	}
	if opts.workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", opts.workers)
	}

	regionsCSV, _ := cmd.Flags().GetString("regions")
	if regionsCSV != "" {
		if !opts.reuse {
			return nil, errors.New("--regions requires --reuse")
		}
		indices, err := parseRegionIndices(regionsCSV)
		if err != nil {
			return nil, err
		}
		opts.regions = indices
	}
	return opts, nil
}

// parseRegionIndices parses a comma-separated list of region indices.
func parseRegionIndices(csv string) ([]int, error) {
	var indices []int
	for _, part := range strings.Split(csv, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid region index: %s", part)
		}
		if idx < 0 {
			return nil, fmt.Errorf("region index must be non-negative: %d", idx)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.ValidateVLM(); err != nil {
		return err
	}

	opts, err := collectExtractOptions(cfg, cmd)
	if err != nil {
		return err
	}

	client, err := vlm.New(cfg.VLM)
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}

	builder := pipeline.NewBuilder().
		FromConfig(cfg).
		WithClient(client).
		WithStore(s).
		WithRequest(opts.request).
		WithWorkers(opts.workers).
		WithPageRange(opts.pages)

	if canvasSize, _ := cmd.Flags().GetInt("canvas-size"); canvasSize > 0 {
		builder.WithCanvasSize(canvasSize)
	}
	if reconstructFlag, _ := cmd.Flags().GetBool("reconstruct"); reconstructFlag {
		builder.WithReconstruction(true)
	}
	if noOverlay, _ := cmd.Flags().GetBool("no-overlay"); noOverlay {
		builder.WithOverlay(false)
	}
	if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
		builder.WithProgressCallback(pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), ""))
	}

	p, err := builder.Build()
	if err != nil {
		return err
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive && !opts.reuse {
		if err := promptForReuse(cmd, p, args[0], opts); err != nil {
			return err
		}
	}

	var result *pipeline.RunResult
	if opts.reuse {
		result, err = p.ProcessCached(cmd.Context(), args[0], opts.regions)
	} else {
		result, err = p.ProcessDocument(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}

	return writeResult(cmd, result, opts.format, opts.outputFile)
}

// promptForReuse asks whether to reuse the cached layout of the last
// indexed run and which regions to re-extract. No cached run means a
// fresh extraction without prompting.
func promptForReuse(cmd *cobra.Command, p *pipeline.Pipeline, path string, opts *extractOptions) error {
	rec, ok := p.LatestRecord(path)
	if !ok {
		return nil
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintf(out, "Found cached run %s from %s (%d regions). Reuse its layout? [y/N] ",
		rec.ID, rec.Timestamp, rec.Summary.TotalRegions)
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return nil
	}
	opts.reuse = true

	fmt.Fprint(out, "Region indices to re-extract (e.g. '0,2'; empty for all): ")
	answer, err = reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	indices, err := parseRegionIndices(answer)
	if err != nil {
		return err
	}
	opts.regions = indices
	return nil
}

// writeResult renders the run result and writes it to the output file or
// stdout.
func writeResult(cmd *cobra.Command, result *pipeline.RunResult, format, outputFile string) error {
	var output string
	if format == "json" {
		data, err := pipeline.ToJSON(result)
		if err != nil {
			return err
		}
		output = string(data) + "\n"
	} else {
		output = pipeline.ToText(result.Pages)
		if result.Document != "" {
			output += "\n========== DOCUMENT ==========\n\n" + result.Document + "\n"
		}
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s (run %s in %s)\n",
			outputFile, result.ID, result.Dir)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
