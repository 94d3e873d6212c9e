package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NaserJamal/simple-ocr/internal/reconstruct"
	"github.com/NaserJamal/simple-ocr/internal/store"
	"github.com/NaserJamal/simple-ocr/internal/vlm"
)

// reconstructCmd rebuilds a markdown document from a cached run.
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct [file]",
	Short: "Reassemble the last extraction of a document into markdown",
	Long: `Reconstruct takes the extracted text of the most recent indexed run
for the document and asks the model to reassemble it into a single
markdown document. No detection or extraction calls are made.

Examples:
  simple-ocr reconstruct contract.pdf
  simple-ocr reconstruct contract.pdf --output contract.md`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runReconstruct,
}

func init() {
	rootCmd.AddCommand(reconstructCmd)

	reconstructCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.ValidateVLM(); err != nil {
		return err
	}

	s, err := store.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}
	rec, pages, ok := s.LoadLatest(args[0])
	if !ok {
		return fmt.Errorf("no cached extraction found for %q", args[0])
	}

	client, err := vlm.New(cfg.VLM)
	if err != nil {
		return err
	}
	r := reconstruct.NewReconstructor(client, reconstruct.Config{
		MaxTokens:   cfg.Reconstruct.MaxTokens,
		Temperature: cfg.Reconstruct.Temperature,
	})

	doc := r.Reconstruct(cmd.Context(), pages)

	if outputFile, _ := cmd.Flags().GetString("output"); outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(doc), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Document written to %s (from run %s)\n", outputFile, rec.ID)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), doc)
	return nil
}
