package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/topiclm-experiments/internal/export"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

func newReportCmd() *cobra.Command {
	var (
		xlsx string
		top  int
	)
	cmd := &cobra.Command{
		Use:   "report <results.json>",
		Short: "Summarise a results file, best perplexity first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			recs, skipped, err := results.ReadFile(args[0], logger)
			if err != nil {
				return err
			}
			results.SortByPerplexity(recs)

			shown := recs
			if top > 0 && top < len(shown) {
				shown = shown[:top]
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Rank", "Model", "Samples", "Ave PPL", "Ave Time (s)"})
			for i, r := range shown {
				table.Append([]string{
					strconv.Itoa(i + 1),
					r.Model,
					strconv.Itoa(len(r.Ppls)),
					strconv.FormatFloat(r.AvePpl, 'f', 3, 64),
					strconv.FormatFloat(r.AveTime, 'f', 2, 64),
				})
			}
			table.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d invalid lines skipped\n", len(recs), skipped)

			if xlsx != "" {
				b, err := export.NewService(logger).ExportRecordsXLSX(recs)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsx, b, 0o644); err != nil {
					return fmt.Errorf("write xlsx: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write all records to this XLSX file")
	cmd.Flags().IntVar(&top, "top", 0, "show only the best N records (0 = all)")
	return cmd
}
