package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NaserJamal/simple-ocr/internal/store"
)

// historyCmd lists past extraction runs from the index.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List indexed extraction runs",
	Long: `History lists the extraction runs recorded in the extraction index
under the output directory, newest first.

Examples:
  simple-ocr history
  simple-ocr history --source contract.pdf --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("source", "", "only show runs for this document")
	historyCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	s, err := store.NewStore(cfg.OutputDir)
	if err != nil {
		return err
	}
	records, err := s.ListRecords()
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	if source != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Source == source {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	// Newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No extraction runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tSOURCE\tREGIONS\tREQUEST")
	for _, rec := range records {
		request := rec.Request
		if request == "" {
			request = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			rec.ID, rec.Timestamp, rec.Source, rec.Summary.TotalRegions, request)
	}
	return w.Flush()
}
