package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/canopy-cli/internal/model"
)

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	assert.Equal(t, 0, s.Trees)
	assert.Empty(t, s.Neighborhoods)
}

func TestComputeStats_SingleTree(t *testing.T) {
	s := ComputeStats([]*model.Tree{
		{Status: "alive", Neighborhood: "Harlem", DensityScore: 10, AccessibilityScore: 7},
	})

	assert.Equal(t, 1, s.Trees)
	assert.Equal(t, 1, s.Alive)
	assert.InDelta(t, 10.0, s.Density.Mean, 1e-9)
	// A single sample has no spread.
	assert.Zero(t, s.Density.StdDev)
}

func TestComputeStats_Distribution(t *testing.T) {
	trees := []*model.Tree{
		{Status: "alive", Neighborhood: "Harlem", DensityScore: 2, AffordabilityScore: 4, AccessibilityScore: 6},
		{Status: "alive", Neighborhood: "Harlem", DensityScore: 4, AffordabilityScore: 4, AccessibilityScore: 8},
		{Status: "dead", Neighborhood: "Astoria", DensityScore: 6, AffordabilityScore: 4, AccessibilityScore: 0},
		{Status: "alive", Neighborhood: "Astoria", DensityScore: 8, AffordabilityScore: 4, AccessibilityScore: 10},
	}

	s := ComputeStats(trees)

	assert.Equal(t, 4, s.Trees)
	assert.Equal(t, 3, s.Alive)
	assert.InDelta(t, 5.0, s.Density.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.Density.Min, 1e-9)
	assert.InDelta(t, 8.0, s.Density.Max, 1e-9)
	// Constant scores collapse to a point.
	assert.InDelta(t, 4.0, s.Affordability.Min, 1e-9)
	assert.InDelta(t, 4.0, s.Affordability.Max, 1e-9)
	assert.Zero(t, s.Affordability.StdDev)

	// Neighborhood aggregates are sorted by name.
	assert.Len(t, s.Neighborhoods, 2)
	assert.Equal(t, "Astoria", s.Neighborhoods[0].Name)
	assert.Equal(t, 2, s.Neighborhoods[0].Trees)
	assert.InDelta(t, 5.0, s.Neighborhoods[0].MeanComposite, 1e-9)
	assert.Equal(t, "Harlem", s.Neighborhoods[1].Name)
	assert.InDelta(t, 7.0, s.Neighborhoods[1].MeanComposite, 1e-9)
}
