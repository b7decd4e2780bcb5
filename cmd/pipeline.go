package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/canopy-cli/internal/enrich"
	"github.com/sells-group/canopy-cli/internal/ingest"
	"github.com/sells-group/canopy-cli/internal/store"
)

// Dataset path flags shared by every command that runs the pipeline.
// Empty flags fall back to the configured defaults.
var (
	flagTrees         string
	flagNeighborhoods string
	flagRents         string
)

func registerDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagTrees, "trees", "", "tree records CSV path")
	cmd.Flags().StringVar(&flagNeighborhoods, "neighborhoods", "", "neighborhoods CSV or shapefile path")
	cmd.Flags().StringVar(&flagRents, "rents", "", "rent table CSV or XLSX path")
}

// loadAndEnrich resolves input paths, applies alias overrides, loads the
// three datasets, and runs the pipeline once.
func loadAndEnrich(ctx context.Context) (*enrich.Result, error) {
	trees := flagTrees
	if trees == "" {
		trees = cfg.Data.Trees
	}
	hoods := flagNeighborhoods
	if hoods == "" {
		hoods = cfg.Data.Neighborhoods
	}
	rents := flagRents
	if rents == "" {
		rents = cfg.Data.Rents
	}

	if cfg.Data.AliasOverrides != "" {
		if err := ingest.LoadAliasOverrides(cfg.Data.AliasOverrides); err != nil {
			return nil, eris.Wrap(err, "load alias overrides")
		}
	}

	in, err := enrich.LoadInputs(trees, hoods, rents)
	if err != nil {
		return nil, err
	}
	return enrich.Run(ctx, in)
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "canopy.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// saveResult persists a finished run and its rent table through the
// configured store.
func saveResult(ctx context.Context, result *enrich.Result) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate store")
	}
	if err := st.SaveRun(ctx, &result.Run, result.Trees); err != nil {
		return err
	}
	return st.SaveRents(ctx, result.Rents)
}
