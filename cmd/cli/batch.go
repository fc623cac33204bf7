package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"radartools/adapters/excel"
	"radartools/models"
)

// batchResult pairs a row's evaluation with the error it failed with, if any
type batchResult struct {
	Row        int                `json:"row"`
	Evaluation *models.Evaluation `json:"evaluation,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Evaluate every row of an xlsx or csv file",
		Long: `Evaluate one detection model per row. The header row names the columns:
variant, pulses, snr, snr_db, pd, threshold, pfa. Blank cells are left unset.

Example: radartools batch cases.xlsx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			requests, err := excel.NewBatchReader(args[0]).ReadRequests()
			if err != nil {
				return err
			}

			results := make([]batchResult, len(requests))
			failed := 0
			for i, req := range requests {
				results[i].Row = i + 2
				eval, err := c.Detection.Evaluate(cmd.Context(), req)
				if err != nil {
					results[i].Error = err.Error()
					failed++
					continue
				}
				results[i].Evaluation = eval
			}

			if asJSON {
				if err := printJSON(results); err != nil {
					return err
				}
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "row\tvariant\tN\tPfa\tSNR\tPd")
				for _, r := range results {
					if r.Evaluation == nil {
						fmt.Fprintf(w, "%d\terror: %s\n", r.Row, r.Error)
						continue
					}
					e := r.Evaluation
					fmt.Fprintf(w, "%d\t%s\t%d\t%g\t%.6g\t%.6g\n", r.Row, e.Variant, e.Pulses, e.Pfa, e.SNR, e.Pd)
				}
				w.Flush()
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d rows failed", failed, len(requests))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
