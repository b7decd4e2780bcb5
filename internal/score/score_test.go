package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canopy-cli/internal/model"
)

func TestDensity(t *testing.T) {
	tests := []struct {
		name    string
		nearest []float64
		want    float64
	}{
		{"no neighbors", nil, 10},
		{"below floor", []float64{1, 1.5}, 10},
		{"at floor", []float64{2, 2}, 10},
		{"linear decay", []float64{12}, 8.8}, // 10 - 0.12*(12-2)
		{"clamped at zero", []float64{100000}, 0},
		{"mixed spacing", []float64{2, 4, 6, 8, 10}, 10 - 0.12*4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Density(tt.nearest), 1e-9)
		})
	}
}

func TestAffordability(t *testing.T) {
	rent := func(f float64) *float64 { return &f }
	tests := []struct {
		name     string
		estimate *float64
		want     float64
	}{
		{"nil estimate", nil, 0},
		{"zero estimate", rent(0), 0},
		{"cheap clamps high", rent(1000), 10},
		{"expensive clamps low", rent(50000), 0},
		{"mid range", rent(5000), 36370.0/5000 - 2.737},
		{"negative extrapolation", rent(-2000), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Affordability(tt.estimate), 1e-9)
		})
	}
}

func TestAffordability_MonotoneInRent(t *testing.T) {
	prev := 11.0
	for rent := 500.0; rent <= 20000; rent += 250 {
		r := rent
		s := Affordability(&r)
		assert.LessOrEqual(t, s, prev, "score must not increase with rent %v", rent)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 10.0)
		prev = s
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		sidewalk string
		problems string
		want     int
	}{
		{"perfect", "Alive", "NoDamage", "None", 3},
		{"empty problems is healthy", "alive", "nodamage", "", 3},
		{"dead is zero", "Dead", "NoDamage", "None", 0},
		{"stump is zero", "stump", "nodamage", "", 0},
		{"one mismatch", "alive", "Damage", "none", 2},
		{"two mismatches", "alive", "Damage", "RootsGrate", 1},
		{"three mismatches floor at one", "unknown", "Damage", "BranchLights", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Health(tt.status, tt.sidewalk, tt.problems))
		})
	}
}

func TestComposite_DeadForcedZero(t *testing.T) {
	assert.Zero(t, Composite(10, 10, 3, "Dead"))
	assert.Zero(t, Composite(10, 10, 3, "dead"))
}

func TestComposite_Range(t *testing.T) {
	assert.InDelta(t, 11, Composite(10, 10, 3, "alive"), 1e-9)
	assert.Zero(t, Composite(0, 0, 0, "alive"))
	assert.InDelta(t, 4+2+2, Composite(10, 5, 2, "alive"), 1e-9)
}

func TestApplyDensity_LoneTreeScoresTen(t *testing.T) {
	trees := []*model.Tree{{ID: "only", Latitude: 40.7, Longitude: -73.9}}
	ApplyDensity(trees)
	assert.InDelta(t, 10.0, trees[0].DensityScore, 1e-9)
}

func TestApplyPasses_FixedOrder(t *testing.T) {
	rent := 4000.0
	trees := []*model.Tree{
		{ID: "a", Status: "Alive", Sidewalk: "NoDamage", Problems: "None",
			Latitude: 40.700, Longitude: -73.900, RentEstimate: &rent},
		{ID: "b", Status: "Dead", Sidewalk: "Damage", Problems: "Stones",
			Latitude: 40.701, Longitude: -73.901, RentEstimate: &rent},
		{ID: "c", Status: "Alive", Sidewalk: "Damage", Problems: "",
			Latitude: 40.702, Longitude: -73.902},
	}

	ApplyDensity(trees)
	ApplyComposite(trees)

	for _, tr := range trees {
		assert.GreaterOrEqual(t, tr.DensityScore, 0.0, tr.ID)
		assert.LessOrEqual(t, tr.DensityScore, 10.0, tr.ID)
	}

	// Dead tree: health and composite forced to zero whatever its density.
	require.Equal(t, "b", trees[1].ID)
	assert.Zero(t, trees[1].HealthScore)
	assert.Zero(t, trees[1].AccessibilityScore)

	// Missing estimate propagates to a zero affordability score, not an error.
	assert.Zero(t, trees[2].AffordabilityScore)

	// Healthy tree scores add up exactly.
	a := trees[0]
	assert.Equal(t, 3, a.HealthScore)
	assert.InDelta(t, a.DensityScore/10*4+a.AffordabilityScore/10*4+3, a.AccessibilityScore, 1e-9)
}
