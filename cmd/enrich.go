package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/canopy-cli/internal/enrich"
	"github.com/sells-group/canopy-cli/internal/model"
)

var (
	enrichOut    string
	enrichFormat string
	enrichSave   bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the full scoring pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		result, err := loadAndEnrich(ctx)
		if err != nil {
			return err
		}

		if enrichSave {
			if err := saveResult(ctx, result); err != nil {
				return err
			}
			zap.L().Info("run saved", zap.String("run_id", result.Run.ID))
		}

		if enrichOut != "" {
			f, err := os.Create(enrichOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", enrichOut)
			}
			defer f.Close()
			return writeTreesCSV(f, result.Trees)
		}

		switch enrichFormat {
		case "csv":
			return writeTreesCSV(os.Stdout, result.Trees)
		case "table":
			printSummary(os.Stdout, result)
			return nil
		default:
			return eris.Errorf("unknown format: %s", enrichFormat)
		}
	},
}

var treesCSVHeader = []string{
	"id", "status", "latitude", "longitude", "neighborhood", "species",
	"rent_estimate", "density_score", "affordability_score",
	"health_score", "accessibility_score",
}

func writeTreesCSV(w io.Writer, trees []*model.Tree) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(treesCSVHeader); err != nil {
		return eris.Wrap(err, "write csv header")
	}
	for _, t := range trees {
		rent := ""
		if t.RentEstimate != nil {
			rent = strconv.FormatFloat(*t.RentEstimate, 'f', 2, 64)
		}
		rec := []string{
			t.ID, t.Status,
			strconv.FormatFloat(t.Latitude, 'f', -1, 64),
			strconv.FormatFloat(t.Longitude, 'f', -1, 64),
			t.Neighborhood, t.Species, rent,
			strconv.FormatFloat(t.DensityScore, 'f', 2, 64),
			strconv.FormatFloat(t.AffordabilityScore, 'f', 2, 64),
			strconv.Itoa(t.HealthScore),
			strconv.FormatFloat(t.AccessibilityScore, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "write csv record")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

// printSummary writes the run record plus per-neighborhood aggregates.
func printSummary(out io.Writer, result *enrich.Result) {
	run := result.Run
	fmt.Fprintf(out, "run %s: %d trees scored (%d neighborhoods, %d rents, %d rows dropped) in %s\n\n",
		run.ID, run.Trees, run.Neighborhoods, run.Rents, run.DroppedRows,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))

	stats := enrich.ComputeStats(result.Trees)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NEIGHBORHOOD\tTREES\tMEAN COMPOSITE")
	for _, hs := range stats.Neighborhoods {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", hs.Name, hs.Trees, hs.MeanComposite)
	}
	w.Flush()
}

func init() {
	registerDataFlags(enrichCmd)
	enrichCmd.Flags().StringVar(&enrichOut, "out", "", "write scored collection to this CSV file")
	enrichCmd.Flags().StringVar(&enrichFormat, "format", "table", "stdout format: table or csv")
	enrichCmd.Flags().BoolVar(&enrichSave, "save", false, "persist the run via the configured store")
	rootCmd.AddCommand(enrichCmd)
}
