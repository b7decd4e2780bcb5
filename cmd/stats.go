package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/canopy-cli/internal/enrich"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Enrich and print score distribution summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		result, err := loadAndEnrich(cmd.Context())
		if err != nil {
			return err
		}

		printStats(os.Stdout, enrich.ComputeStats(result.Trees))
		return nil
	},
}

func printStats(out io.Writer, stats enrich.Stats) {
	fmt.Fprintf(out, "%d trees (%d alive)\n\n", stats.Trees, stats.Alive)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tMEAN\tSTDDEV\tMIN\tP25\tMEDIAN\tP75\tMAX")
	for _, row := range []struct {
		name string
		s    enrich.ScoreSummary
	}{
		{"density", stats.Density},
		{"affordability", stats.Affordability},
		{"composite", stats.Composite},
	} {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			row.name, row.s.Mean, row.s.StdDev, row.s.Min, row.s.P25,
			row.s.Median, row.s.P75, row.s.Max)
	}
	w.Flush()
}

func init() {
	registerDataFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
