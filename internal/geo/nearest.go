package geo

import (
	"math"
	"sort"

	"github.com/sells-group/canopy-cli/internal/model"
)

// interpolationAnchors is the number of nearest neighborhoods used for a
// rent estimate. The estimate is nil unless exactly this many anchors with
// known rents are found.
const interpolationAnchors = 3

// Anchor is one nearest-neighborhood candidate: its name, the geodesic
// distance to the query point, and its rent if the table knows one. Anchors
// live only for the duration of a single interpolation.
type Anchor struct {
	Name     string
	Distance float64
	Rent     *float64
}

// RentLookup resolves a neighborhood name to a rent. The ingest layer binds
// this to the rent table together with its key normalization, so the geo
// package stays free of text-canonicalization concerns.
type RentLookup func(name string) (float64, bool)

// NearestAnchors returns up to interpolationAnchors neighborhoods closest
// to (lat, lon), sorted by ascending distance. Non-finite distances are
// discarded. While below capacity every candidate is inserted; at capacity
// the farthest kept anchor is replaced only when the candidate is strictly
// closer.
func NearestAnchors(lat, lon float64, hoods []model.Neighborhood, lookup RentLookup) []Anchor {
	var kept []Anchor
	for _, h := range hoods {
		d := Haversine(lat, lon, h.Latitude, h.Longitude)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		a := Anchor{Name: h.Name, Distance: d}
		if r, ok := lookup(h.Name); ok {
			rent := r
			a.Rent = &rent
		}

		if len(kept) < interpolationAnchors {
			kept = append(kept, a)
		} else if d < kept[len(kept)-1].Distance {
			kept[len(kept)-1] = a
		} else {
			continue
		}
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].Distance < kept[j].Distance
		})
	}
	return kept
}

// EstimateRent produces the inverse-distance-weighted rent at a point from
// its three nearest anchors. It returns nil unless exactly three anchors
// are present and all carry known rents; nil propagates through scoring
// distinctly from zero.
//
// With distances d1 ≤ d2 ≤ d3 (floored at zero) the weights are
// barycentric-style: wi = (sum of the other two − di) / (d1+d2+d3). A
// weight can go negative when one distance exceeds the other two combined;
// that extrapolation away from a lone close outlier is intentional and is
// not clamped. Coincident anchors (zero total) fall back to the unweighted
// mean.
func EstimateRent(anchors []Anchor) *float64 {
	if len(anchors) != interpolationAnchors {
		return nil
	}
	for _, a := range anchors {
		if a.Rent == nil {
			return nil
		}
	}

	d1 := math.Max(anchors[0].Distance, 0)
	d2 := math.Max(anchors[1].Distance, 0)
	d3 := math.Max(anchors[2].Distance, 0)
	total := d1 + d2 + d3

	var estimate float64
	if total == 0 {
		estimate = (*anchors[0].Rent + *anchors[1].Rent + *anchors[2].Rent) / 3
	} else {
		w1 := (d2 + d3 - d1) / total
		w2 := (d1 + d3 - d2) / total
		w3 := (d1 + d2 - d3) / total
		estimate = w1**anchors[0].Rent + w2**anchors[1].Rent + w3**anchors[2].Rent
	}
	return &estimate
}

// ResolveNeighborhood names the nearest neighborhood to a point and
// returns the interpolated rent estimate alongside it. With no
// neighborhoods at all the name degrades to the Unknown sentinel and the
// estimate to nil.
func ResolveNeighborhood(lat, lon float64, hoods []model.Neighborhood, lookup RentLookup) (string, *float64) {
	anchors := NearestAnchors(lat, lon, hoods, lookup)
	if len(anchors) == 0 {
		return model.UnknownNeighborhood, nil
	}
	return anchors[0].Name, EstimateRent(anchors)
}
