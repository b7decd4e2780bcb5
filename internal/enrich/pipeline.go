// Package enrich orchestrates the one-shot scoring pipeline: parse the
// three raw datasets, normalize them, resolve per-tree interpolation, and
// run the two batch scoring passes. The scored collection becomes visible
// only after the whole pipeline has completed.
package enrich

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/canopy-cli/internal/ingest"
	"github.com/sells-group/canopy-cli/internal/model"
	"github.com/sells-group/canopy-cli/internal/score"
	"github.com/sells-group/canopy-cli/internal/tabular"
)

// Inputs carries the three datasets after format bridging (CSV text,
// XLSX workbook, or shapefile) but before normalization.
type Inputs struct {
	Trees         tabular.Table
	Neighborhoods []model.Neighborhood
	Rents         tabular.Table
}

// Result is the finished product: the fully scored tree collection in
// input row order, the supporting collections, and the run record.
type Result struct {
	Run           model.Run
	Trees         []*model.Tree
	Neighborhoods []model.Neighborhood
	Rents         model.RentTable
}

// Run executes the full pipeline once. Malformed rows never fail the run;
// they are dropped and counted. The only error paths are context
// cancellation during the interpolation fan-out.
//
// The two scoring passes run in fixed order: density first (it builds the
// spatial index over the full collection), composite second (it consumes
// the density and rent results). That ordering is a correctness
// requirement, not a preference.
func Run(ctx context.Context, in Inputs) (*Result, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	started := time.Now()

	rents, rentsDropped := ingest.Rents(in.Rents)
	log.Info("rent table built",
		zap.Int("entries", len(rents)), zap.Int("dropped", rentsDropped))

	trees, treesDropped, err := ingest.Trees(ctx, in.Trees, in.Neighborhoods, rents)
	if err != nil {
		return nil, err
	}
	log.Info("trees normalized",
		zap.Int("trees", len(trees)), zap.Int("dropped", treesDropped))

	score.ApplyDensity(trees)
	score.ApplyComposite(trees)

	finished := time.Now()
	log.Info("enrichment complete",
		zap.Int("trees", len(trees)),
		zap.Duration("elapsed", finished.Sub(started)))

	return &Result{
		Run: model.Run{
			ID:            runID,
			Status:        model.RunStatusComplete,
			Trees:         len(trees),
			Neighborhoods: len(in.Neighborhoods),
			Rents:         len(rents),
			DroppedRows:   treesDropped + rentsDropped,
			StartedAt:     started,
			FinishedAt:    finished,
		},
		Trees:         trees,
		Neighborhoods: in.Neighborhoods,
		Rents:         rents,
	}, nil
}
