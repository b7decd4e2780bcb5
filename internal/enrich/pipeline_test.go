package enrich

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canopy-cli/internal/model"
	"github.com/sells-group/canopy-cli/internal/tabular"
)

func testInputs() Inputs {
	treesCSV := "tree_id,status,sidewalk,problems,latitude,longitude,spc_common\n" +
		"1,Alive,NoDamage,None,40.7000,-73.9000,Pin Oak\n" +
		"2,Alive,Damage,Stones,40.7001,-73.9001,Red Maple\n" +
		"3,Dead,NoDamage,None,40.7002,-73.9002,Honeylocust\n" +
		"4,Alive,NoDamage,,40.7100,-73.9100,Ginkgo\n" +
		"5,Alive,NoDamage,None,junk,-73.9,Willow Oak\n"

	rentsCSV := "neighborhood,rent\nAlpha,3000\nBeta,4000\nGamma,5000\n"

	return Inputs{
		Trees: tabular.Parse(treesCSV),
		Neighborhoods: []model.Neighborhood{
			{Name: "Alpha", Latitude: 40.700, Longitude: -73.900},
			{Name: "Beta", Latitude: 40.705, Longitude: -73.905},
			{Name: "Gamma", Latitude: 40.712, Longitude: -73.912},
		},
		Rents: tabular.Parse(rentsCSV),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	res, err := Run(context.Background(), testInputs())
	require.NoError(t, err)

	// The bad-coordinate row is gone; order follows the input file.
	require.Len(t, res.Trees, 4)
	for i, id := range []string{"1", "2", "3", "4"} {
		assert.Equal(t, id, res.Trees[i].ID)
	}

	assert.Equal(t, model.RunStatusComplete, res.Run.Status)
	assert.Equal(t, 4, res.Run.Trees)
	assert.Equal(t, 3, res.Run.Neighborhoods)
	assert.Equal(t, 3, res.Run.Rents)
	assert.Equal(t, 1, res.Run.DroppedRows)
	assert.NotEmpty(t, res.Run.ID)

	for _, tree := range res.Trees {
		assert.False(t, math.IsNaN(tree.DensityScore) || math.IsInf(tree.DensityScore, 0), tree.ID)
		assert.GreaterOrEqual(t, tree.DensityScore, 0.0, tree.ID)
		assert.LessOrEqual(t, tree.DensityScore, 10.0, tree.ID)
		assert.GreaterOrEqual(t, tree.AffordabilityScore, 0.0, tree.ID)
		assert.LessOrEqual(t, tree.AffordabilityScore, 10.0, tree.ID)
		assert.GreaterOrEqual(t, tree.AccessibilityScore, 0.0, tree.ID)
		assert.LessOrEqual(t, tree.AccessibilityScore, 11.0, tree.ID)
		assert.NotEmpty(t, tree.Neighborhood, tree.ID)
	}

	// Dead tree: forced zeros regardless of its dense surroundings.
	dead := res.Trees[2]
	require.Equal(t, "Dead", dead.Status)
	assert.Zero(t, dead.HealthScore)
	assert.Zero(t, dead.AccessibilityScore)

	// Every tree sits near three priced neighborhoods, so estimates exist.
	for _, tree := range res.Trees {
		require.NotNil(t, tree.RentEstimate, tree.ID)
		assert.False(t, math.IsNaN(*tree.RentEstimate), tree.ID)
	}
}

func TestRun_CoincidentAnchorsMeanRent(t *testing.T) {
	in := Inputs{
		Trees: tabular.Parse("tree_id,status,latitude,longitude\n1,Alive,40.7,-73.9\n"),
		Neighborhoods: []model.Neighborhood{
			{Name: "A", Latitude: 40.7, Longitude: -73.9},
			{Name: "B", Latitude: 40.7, Longitude: -73.9},
			{Name: "C", Latitude: 40.7, Longitude: -73.9},
		},
		Rents: tabular.Parse("neighborhood,rent\nA,3000\nB,4000\nC,5000\n"),
	}
	res, err := Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Trees, 1)
	require.NotNil(t, res.Trees[0].RentEstimate)
	assert.InDelta(t, 4000, *res.Trees[0].RentEstimate, 1e-9)
}

func TestRun_LoneTreeMaxDensity(t *testing.T) {
	in := Inputs{
		Trees: tabular.Parse("tree_id,status,latitude,longitude\n1,Alive,40.7,-73.9\n"),
		Rents: tabular.Parse(""),
	}
	res, err := Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Trees, 1)
	assert.InDelta(t, 10.0, res.Trees[0].DensityScore, 1e-9)
	assert.Equal(t, model.UnknownNeighborhood, res.Trees[0].Neighborhood)
	assert.Zero(t, res.Trees[0].AffordabilityScore)
}

func TestRun_NoData(t *testing.T) {
	res, err := Run(context.Background(), Inputs{
		Trees: tabular.Parse("tree_id,latitude,longitude\n"),
		Rents: tabular.Parse(""),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Trees)
	assert.Equal(t, model.RunStatusComplete, res.Run.Status)
}

func TestRun_ManyTreesParallelResolution(t *testing.T) {
	// Enough rows to span several resolution batches.
	csv := "tree_id,status,latitude,longitude\n"
	for i := 0; i < 1500; i++ {
		csv += fmt.Sprintf("%d,Alive,%f,%f\n", i, 40.6+float64(i%40)*0.001, -74.0+float64(i/40)*0.001)
	}
	in := Inputs{
		Trees: tabular.Parse(csv),
		Neighborhoods: []model.Neighborhood{
			{Name: "A", Latitude: 40.61, Longitude: -73.99},
			{Name: "B", Latitude: 40.62, Longitude: -73.98},
			{Name: "C", Latitude: 40.63, Longitude: -73.97},
		},
		Rents: tabular.Parse("neighborhood,rent\nA,3000\nB,4000\nC,5000\n"),
	}
	res, err := Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Trees, 1500)
	for _, tree := range res.Trees {
		require.NotNil(t, tree.RentEstimate)
		assert.NotEqual(t, "", tree.Neighborhood)
	}
}
