package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"radartools/domain/sweep"
	"radartools/internal/config"
	"radartools/internal/container"
	"radartools/models"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "radartools",
		Short:         "Radar detection statistics: Pd, required SNR, thresholds and curve sweeps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newPdCmd(),
		newSNRCmd(),
		newThresholdCmd(),
		newSweepCmd(),
		newBatchCmd(),
		newSelfCheckCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads .env, configuration and the dependency container
func setup() (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

// operatingFlags are the --threshold/--pfa pair shared by pd and snr
type operatingFlags struct {
	variant   string
	pulses    int
	threshold float64
	pfa       float64
	asJSON    bool
}

func (f *operatingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.variant, "variant", "", "target variant: marcum, swerling1..4 (default from DEFAULT_VARIANT)")
	cmd.Flags().IntVarP(&f.pulses, "pulses", "n", 0, "pulses integrated (default from DEFAULT_PULSES)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "detection threshold")
	cmd.Flags().Float64Var(&f.pfa, "pfa", 0, "probability of false alarm (default from DEFAULT_PFA)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("threshold", "pfa")
}

func (f *operatingFlags) apply(cmd *cobra.Command, req *models.EvaluateRequest) {
	req.Variant = f.variant
	req.Pulses = f.pulses
	if cmd.Flags().Changed("threshold") {
		req.Threshold = &f.threshold
	}
	if cmd.Flags().Changed("pfa") {
		req.Pfa = &f.pfa
	}
}

func newPdCmd() *cobra.Command {
	var op operatingFlags
	var snr, snrDB float64

	cmd := &cobra.Command{
		Use:   "pd",
		Short: "Probability of detection at a given SNR",
		Long: `Compute the probability of detection for a target at a given per-pulse SNR.

Example: radartools pd --variant swerling1 -n 10 --snr-db 12 --pfa 1e-6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.EvaluateRequest
			op.apply(cmd, &req)
			if cmd.Flags().Changed("snr") {
				req.SNR = &snr
			}
			if cmd.Flags().Changed("snr-db") {
				req.SNRdB = &snrDB
			}
			return runEvaluate(cmd.Context(), req, op.asJSON)
		},
	}

	op.register(cmd)
	cmd.Flags().Float64Var(&snr, "snr", 0, "per-pulse SNR (linear)")
	cmd.Flags().Float64Var(&snrDB, "snr-db", 0, "per-pulse SNR (dB)")
	cmd.MarkFlagsOneRequired("snr", "snr-db")
	cmd.MarkFlagsMutuallyExclusive("snr", "snr-db")
	return cmd
}

func newSNRCmd() *cobra.Command {
	var op operatingFlags
	var pd float64

	cmd := &cobra.Command{
		Use:   "snr",
		Short: "SNR required to reach a probability of detection",
		Long: `Solve for the per-pulse SNR a target needs to be detected with the given Pd.

Example: radartools snr --variant sw3 -n 3 --pd 0.9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.EvaluateRequest{Pd: &pd}
			op.apply(cmd, &req)
			return runEvaluate(cmd.Context(), req, op.asJSON)
		},
	}

	op.register(cmd)
	cmd.Flags().Float64Var(&pd, "pd", 0, "desired probability of detection")
	_ = cmd.MarkFlagRequired("pd")
	return cmd
}

func runEvaluate(ctx context.Context, req models.EvaluateRequest, asJSON bool) error {
	c, err := setup()
	if err != nil {
		return err
	}
	eval, err := c.Detection.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(eval)
	}
	printEvaluation(eval)
	return nil
}

func printEvaluation(eval *models.Evaluation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Variant\t%s\n", eval.Variant)
	fmt.Fprintf(w, "N\t%d\n", eval.Pulses)
	fmt.Fprintf(w, "DoF\t%s\n", eval.DegreesOfFreedom)
	fmt.Fprintf(w, "Pfa\t%g\n", eval.Pfa)
	fmt.Fprintf(w, "Thr\t%g\n", eval.Threshold)
	if eval.SNRdB != nil {
		fmt.Fprintf(w, "SNR\t%g (%.3f dB)\n", eval.SNR, *eval.SNRdB)
	} else {
		fmt.Fprintf(w, "SNR\t%g\n", eval.SNR)
	}
	fmt.Fprintf(w, "Pd\t%g\n", eval.Pd)
	w.Flush()
}

func newThresholdCmd() *cobra.Command {
	var pulses int
	var pfa float64

	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Noise threshold for a false-alarm probability",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pfa") {
				pfa = c.Config.Defaults.Pfa
			}
			res, err := c.Detection.Threshold(cmd.Context(), pulses, pfa)
			if err != nil {
				return err
			}
			fmt.Printf("%g\n", res.Threshold)
			return nil
		},
	}

	cmd.Flags().IntVarP(&pulses, "pulses", "n", 0, "pulses integrated (default from DEFAULT_PULSES)")
	cmd.Flags().Float64Var(&pfa, "pfa", 0, "probability of false alarm (default from DEFAULT_PFA)")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var variants []string
	var pulses []int
	var pdTargets []float64
	var pfa, minDB, maxDB, stepDB float64
	var xlsxPath, pngPath, pdfPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Pd-vs-SNR curves for several variants and pulse counts",
		Long: `Sweep Pd over an SNR grid for every variant and pulse count, optionally with a
required-SNR table, and export the results.

Example: radartools sweep -n 1,10 --variants marcum,sw1 --pd-targets 0.5,0.9 --xlsx sweep.xlsx --pdf sweep.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			req := models.CurveRequest{Variants: variants, Pulses: pulses}
			if cmd.Flags().Changed("pfa") {
				req.Pfa = &pfa
			}
			if cmd.Flags().Changed("min-db") || cmd.Flags().Changed("max-db") || cmd.Flags().Changed("step-db") {
				grid := sweep.Grid{MinDB: c.Config.Sweep.SNRMinDB, MaxDB: c.Config.Sweep.SNRMaxDB, StepDB: c.Config.Sweep.StepDB}
				if cmd.Flags().Changed("min-db") {
					grid.MinDB = minDB
				}
				if cmd.Flags().Changed("max-db") {
					grid.MaxDB = maxDB
				}
				if cmd.Flags().Changed("step-db") {
					grid.StepDB = stepDB
				}
				req.Grid = &grid
			}

			result, err := c.Sweeps.Curves(ctx, req)
			if err != nil {
				return err
			}
			report := sweep.Report{Curves: result}

			if len(pdTargets) > 0 {
				table, err := c.Sweeps.RequiredSNR(ctx, models.RequiredSNRRequest{
					Variants: variants, Pulses: pulses, Pfa: req.Pfa, PdTargets: pdTargets,
				})
				if err != nil {
					return err
				}
				report.Table = table
			}

			outDir := c.Config.Output.Dir
			if xlsxPath != "" {
				if err := c.Workbook.Export(ctx, report, outputPath(outDir, xlsxPath)); err != nil {
					return err
				}
			}
			if pdfPath != "" {
				if err := c.Report.Export(ctx, report, outputPath(outDir, pdfPath)); err != nil {
					return err
				}
			}
			if pngPath != "" {
				img, err := c.Renderer.Render(result)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outputPath(outDir, pngPath), img, 0o644); err != nil {
					return fmt.Errorf("failed to write plot: %w", err)
				}
			}

			if asJSON {
				return printJSON(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&variants, "variants", nil, "variants to sweep (default all)")
	cmd.Flags().IntSliceVarP(&pulses, "pulses", "n", nil, "pulse counts (default from DEFAULT_PULSES)")
	cmd.Flags().Float64SliceVar(&pdTargets, "pd-targets", nil, "Pd targets for a required-SNR table")
	cmd.Flags().Float64Var(&pfa, "pfa", 0, "probability of false alarm (default from DEFAULT_PFA)")
	cmd.Flags().Float64Var(&minDB, "min-db", 0, "lowest SNR in dB (default from SWEEP_SNR_MIN_DB)")
	cmd.Flags().Float64Var(&maxDB, "max-db", 0, "highest SNR in dB (default from SWEEP_SNR_MAX_DB)")
	cmd.Flags().Float64Var(&stepDB, "step-db", 0, "SNR step in dB (default from SWEEP_SNR_STEP_DB)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an xlsx workbook")
	cmd.Flags().StringVar(&pngPath, "png", "", "write a PNG plot")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write a PDF report")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printReport(report sweep.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if r := report.Curves; r != nil {
		fmt.Fprintf(w, "sweep %s (pfa %g, %d curves)\n", r.ID, r.Pfa, len(r.Curves))
		fmt.Fprintln(w, "curve\tthreshold\tPd at min\tPd at max")
		for _, c := range r.Curves {
			if len(c.Points) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.6g\n", c.Label(), c.Threshold, c.Points[0].Pd, c.Points[len(c.Points)-1].Pd)
		}
	}
	if t := report.Table; t != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "variant\tpulses\tPd\tSNR\tSNR (dB)")
		for _, row := range t.Rows {
			fmt.Fprintf(w, "%s\t%d\t%g\t%.6g\t%.3f\n", row.Variant, row.Pulses, row.Pd, row.SNR, row.SNRdB)
		}
	}
	w.Flush()
}

func newSelfCheckCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Verify the detection math against published tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup()
			if err != nil {
				return err
			}
			report, err := c.SelfCheck.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, ref := range report.References {
					status := "ok"
					if !ref.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(w, "%s\t%.8g\t%.8g\t%s\n", ref.Name, ref.Expected, ref.Actual, status)
				}
				rt := report.RoundTrip
				fmt.Fprintf(w, "round trip\t%d cases (%d skipped)\tmax %.3g mean %.3g p95 %.3g\n",
					rt.Cases, rt.Skipped, rt.Max, rt.Mean, rt.P95)
				w.Flush()
			}

			if !report.Passed {
				return fmt.Errorf("self-check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func outputPath(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
