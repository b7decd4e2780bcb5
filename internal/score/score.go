// Package score turns geometric results into the bounded scores the map
// front-end presents: density, affordability, health, and the composite
// accessibility score.
package score

import (
	"math"
	"strings"

	"github.com/sells-group/canopy-cli/internal/geo"
	"github.com/sells-group/canopy-cli/internal/model"
)

const (
	// DensityNeighbors is the k used for the nearest-tree density query.
	DensityNeighbors = 5

	// densityFloorMeters is the spacing at or below which density maxes out.
	densityFloorMeters = 2.0

	// densitySlope is the score lost per meter of mean spacing beyond the floor.
	densitySlope = 0.12

	// Affordability transforms a monthly rent estimate onto a 0-10 scale:
	// 36370/rent - 2.737 puts ~$2,850 near 10 and ~$13,300 near 0.
	affordabilityNumerator = 36370.0
	affordabilityOffset    = 2.737
)

// Density maps the mean distance to a tree's nearest neighbors onto 0-10.
// A tree with no neighbors at all scores the maximum 10; that convention is
// deliberate (an empty dataset is "dense" by fiat, not an error). The same
// maximum applies when the mean is non-finite, non-positive, or under the
// 2 m floor. Beyond the floor the score decays linearly with spacing.
func Density(nearest []float64) float64 {
	if len(nearest) == 0 {
		return 10
	}
	var sum float64
	for _, d := range nearest {
		sum += d
	}
	mean := sum / float64(len(nearest))
	if math.IsNaN(mean) || math.IsInf(mean, 0) || mean <= 0 || mean < densityFloorMeters {
		return 10
	}
	return clamp(10-densitySlope*(mean-densityFloorMeters), 0, 10)
}

// Affordability maps a rent estimate onto 0-10, higher meaning cheaper.
// A nil or zero estimate scores 0 outright; dividing by zero is never
// allowed to manufacture an infinity.
func Affordability(estimate *float64) float64 {
	if estimate == nil || *estimate == 0 {
		return 0
	}
	if math.IsNaN(*estimate) || math.IsInf(*estimate, 0) {
		return 0
	}
	return clamp(affordabilityNumerator/(*estimate)-affordabilityOffset, 0, 10)
}

// Health scores a tree's categorical condition 0-3. Stumps and dead trees
// are 0 unconditionally. Otherwise each departure from the healthy
// baseline (alive status, undamaged sidewalk, no recorded problems) costs
// a point, flooring at 1.
func Health(status, sidewalk, problems string) int {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "stump" || s == "dead" {
		return 0
	}

	mismatches := 0
	if s != "alive" {
		mismatches++
	}
	if !strings.EqualFold(strings.TrimSpace(sidewalk), "nodamage") {
		mismatches++
	}
	p := strings.ToLower(strings.TrimSpace(problems))
	if p != "" && p != "none" {
		mismatches++
	}

	switch mismatches {
	case 0:
		return 3
	case 1:
		return 2
	default:
		return 1
	}
}

// Composite combines the sub-scores into the 0-11 accessibility score. A
// dead tree is 0 regardless of the other signals. Density and
// affordability are rescaled from 0-10 to 0-4 each; health contributes its
// 0-3 as-is. The sum is intentionally not clamped; presentation buckets
// the 0-11 range into qualitative bands.
func Composite(density, affordability float64, health int, status string) float64 {
	if strings.EqualFold(strings.TrimSpace(status), "dead") {
		return 0
	}
	return density/10*4 + affordability/10*4 + float64(health)
}

// ApplyDensity runs the first batch pass: it builds the spatial index over
// the whole collection and assigns every tree's density score. It must run
// before ApplyComposite.
func ApplyDensity(trees []*model.Tree) {
	idx := geo.NewKDTree(trees)
	for _, t := range trees {
		t.DensityScore = Density(idx.NearestDistances(t, DensityNeighbors))
	}
}

// ApplyComposite runs the second batch pass: affordability, health, and
// the composite accessibility score. Density scores must already be
// populated; running this pass first would fold unassigned densities into
// every composite.
func ApplyComposite(trees []*model.Tree) {
	for _, t := range trees {
		t.AffordabilityScore = Affordability(t.RentEstimate)
		t.HealthScore = Health(t.Status, t.Sidewalk, t.Problems)
		t.AccessibilityScore = Composite(t.DensityScore, t.AffordabilityScore, t.HealthScore, t.Status)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
