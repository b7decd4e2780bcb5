package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/canopy-cli/internal/model"
)

// ErrNotFound is returned when a run or tree id does not exist.
var ErrNotFound = eris.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// TreeFilter specifies criteria for listing scored trees of a run.
type TreeFilter struct {
	Neighborhood string  `json:"neighborhood,omitempty"`
	Species      string  `json:"species,omitempty"`
	MinScore     float64 `json:"min_score,omitempty"`
	Limit        int     `json:"limit,omitempty"`
	Offset       int     `json:"offset,omitempty"`
}

// Store defines the persistence interface for enrichment output. The
// pipeline never reads from a Store; it only saves finished runs. The serve
// and stats commands read them back.
type Store interface {
	// Runs
	SaveRun(ctx context.Context, run *model.Run, trees []*model.Tree) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	LatestRun(ctx context.Context) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Trees
	ListTrees(ctx context.Context, runID string, filter TreeFilter) ([]model.Tree, error)
	RandomTree(ctx context.Context, runID string) (*model.Tree, error)

	// Rents
	SaveRents(ctx context.Context, rents model.RentTable) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// treeColumns is the column order shared by both drivers for tree rows.
// ord preserves input order, which the API contract requires.
var treeColumns = []string{
	"run_id", "ord", "id", "status", "sidewalk", "problems",
	"latitude", "longitude", "neighborhood", "species", "rent_estimate",
	"density_score", "affordability_score", "health_score", "accessibility_score",
}

func treeRow(runID string, ord int, t *model.Tree) []any {
	return []any{
		runID, ord, t.ID, t.Status, t.Sidewalk, t.Problems,
		t.Latitude, t.Longitude, t.Neighborhood, t.Species, t.RentEstimate,
		t.DensityScore, t.AffordabilityScore, t.HealthScore, t.AccessibilityScore,
	}
}
