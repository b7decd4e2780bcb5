package main

import (
	"encoding/json"
	"math/rand/v2"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Enrich and print one random scored tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		result, err := loadAndEnrich(cmd.Context())
		if err != nil {
			return err
		}
		if len(result.Trees) == 0 {
			return eris.New("collection is empty")
		}

		tree := result.Trees[rand.IntN(len(result.Trees))]
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	},
}

func init() {
	registerDataFlags(randomCmd)
	rootCmd.AddCommand(randomCmd)
}
