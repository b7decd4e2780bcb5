package enrich

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/canopy-cli/internal/model"
)

// ScoreSummary describes the distribution of one score across a collection.
type ScoreSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
}

// NeighborhoodStat aggregates composite scores per neighborhood.
type NeighborhoodStat struct {
	Name          string  `json:"name"`
	Trees         int     `json:"trees"`
	MeanComposite float64 `json:"mean_composite"`
}

// Stats summarizes the score distributions of a scored collection.
type Stats struct {
	Trees         int                `json:"trees"`
	Alive         int                `json:"alive"`
	Density       ScoreSummary       `json:"density"`
	Affordability ScoreSummary       `json:"affordability"`
	Composite     ScoreSummary       `json:"composite"`
	Neighborhoods []NeighborhoodStat `json:"neighborhoods"`
}

// ComputeStats builds distribution summaries over an already-scored
// collection. An empty collection yields zero-valued summaries.
func ComputeStats(trees []*model.Tree) Stats {
	s := Stats{Trees: len(trees)}
	if len(trees) == 0 {
		return s
	}

	density := make([]float64, len(trees))
	afford := make([]float64, len(trees))
	composite := make([]float64, len(trees))
	byHood := make(map[string]*NeighborhoodStat)

	for i, t := range trees {
		density[i] = t.DensityScore
		afford[i] = t.AffordabilityScore
		composite[i] = t.AccessibilityScore
		if strings.EqualFold(t.Status, "alive") {
			s.Alive++
		}

		hs, ok := byHood[t.Neighborhood]
		if !ok {
			hs = &NeighborhoodStat{Name: t.Neighborhood}
			byHood[t.Neighborhood] = hs
		}
		hs.Trees++
		hs.MeanComposite += t.AccessibilityScore
	}

	s.Density = summarize(density)
	s.Affordability = summarize(afford)
	s.Composite = summarize(composite)

	for _, hs := range byHood {
		hs.MeanComposite /= float64(hs.Trees)
		s.Neighborhoods = append(s.Neighborhoods, *hs)
	}
	sort.Slice(s.Neighborhoods, func(i, j int) bool {
		return s.Neighborhoods[i].Name < s.Neighborhoods[j].Name
	})

	return s
}

// summarize sorts its input in place. Quantiles use the empirical CDF.
func summarize(xs []float64) ScoreSummary {
	sort.Float64s(xs)
	sd := 0.0
	if len(xs) > 1 {
		sd = stat.StdDev(xs, nil)
	}
	return ScoreSummary{
		Mean:   stat.Mean(xs, nil),
		StdDev: sd,
		Min:    xs[0],
		Max:    xs[len(xs)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, xs, nil),
	}
}
