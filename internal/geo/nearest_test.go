package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canopy-cli/internal/model"
)

func rentLookup(rents map[string]float64) RentLookup {
	return func(name string) (float64, bool) {
		r, ok := rents[name]
		return r, ok
	}
}

func TestNearestAnchors_KeepsThreeClosest(t *testing.T) {
	hoods := []model.Neighborhood{
		{Name: "Far", Latitude: 41.0, Longitude: -74.0},
		{Name: "Near", Latitude: 40.01, Longitude: -74.0},
		{Name: "Mid", Latitude: 40.1, Longitude: -74.0},
		{Name: "Nearest", Latitude: 40.001, Longitude: -74.0},
	}
	anchors := NearestAnchors(40.0, -74.0, hoods, rentLookup(nil))
	require.Len(t, anchors, 3)
	assert.Equal(t, "Nearest", anchors[0].Name)
	assert.Equal(t, "Near", anchors[1].Name)
	assert.Equal(t, "Mid", anchors[2].Name)
	assert.True(t, anchors[0].Distance <= anchors[1].Distance)
	assert.True(t, anchors[1].Distance <= anchors[2].Distance)
}

func TestNearestAnchors_FewerAreasThanCapacity(t *testing.T) {
	hoods := []model.Neighborhood{
		{Name: "A", Latitude: 0, Longitude: 0},
		{Name: "B", Latitude: 0, Longitude: 1},
	}
	anchors := NearestAnchors(0, 0.25, hoods, rentLookup(map[string]float64{"A": 3000, "B": 5000}))
	require.Len(t, anchors, 2)
	// Two areas can never produce an estimate, whatever their rents.
	assert.Nil(t, EstimateRent(anchors))
}

func TestEstimateRent_RequiresAllRentsKnown(t *testing.T) {
	anchors := []Anchor{
		{Name: "A", Distance: 100, Rent: ptr(3000)},
		{Name: "B", Distance: 200, Rent: nil},
		{Name: "C", Distance: 300, Rent: ptr(4000)},
	}
	assert.Nil(t, EstimateRent(anchors))
}

func TestEstimateRent_CoincidentAnchorsUseMean(t *testing.T) {
	anchors := []Anchor{
		{Name: "A", Distance: 0, Rent: ptr(3000)},
		{Name: "B", Distance: 0, Rent: ptr(4000)},
		{Name: "C", Distance: 0, Rent: ptr(5000)},
	}
	est := EstimateRent(anchors)
	require.NotNil(t, est)
	assert.InDelta(t, 4000, *est, 1e-9)
}

func TestEstimateRent_WeightsSumToOne(t *testing.T) {
	cases := [][3]float64{
		{100, 200, 300},
		{1, 1, 1},
		{50, 5000, 5100},
		{0, 10, 20},
	}
	for _, ds := range cases {
		total := ds[0] + ds[1] + ds[2]
		w1 := (ds[1] + ds[2] - ds[0]) / total
		w2 := (ds[0] + ds[2] - ds[1]) / total
		w3 := (ds[0] + ds[1] - ds[2]) / total
		assert.InDelta(t, 1.0, w1+w2+w3, 1e-12, "distances %v", ds)
	}
}

func TestEstimateRent_NegativeWeightExtrapolates(t *testing.T) {
	// d3 dominates d1+d2, so the far anchor gets a negative weight and the
	// estimate lands beyond the near rents rather than between them.
	anchors := []Anchor{
		{Name: "A", Distance: 10, Rent: ptr(3000)},
		{Name: "B", Distance: 20, Rent: ptr(3000)},
		{Name: "C", Distance: 1000, Rent: ptr(9000)},
	}
	est := EstimateRent(anchors)
	require.NotNil(t, est)
	assert.Less(t, *est, 3000.0)
	assert.False(t, math.IsNaN(*est))
}

func TestResolveNeighborhood_NoAreas(t *testing.T) {
	name, est := ResolveNeighborhood(40.7, -73.9, nil, rentLookup(nil))
	assert.Equal(t, model.UnknownNeighborhood, name)
	assert.Nil(t, est)
}

func TestResolveNeighborhood_NearestNameWins(t *testing.T) {
	hoods := []model.Neighborhood{
		{Name: "Greenpoint", Latitude: 40.730, Longitude: -73.951},
		{Name: "Williamsburg", Latitude: 40.708, Longitude: -73.957},
		{Name: "Bushwick", Latitude: 40.694, Longitude: -73.921},
	}
	rents := map[string]float64{"Greenpoint": 3500, "Williamsburg": 3900, "Bushwick": 2800}

	name, est := ResolveNeighborhood(40.729, -73.950, hoods, rentLookup(rents))
	assert.Equal(t, "Greenpoint", name)
	require.NotNil(t, est)
	assert.False(t, math.IsNaN(*est))
	assert.False(t, math.IsInf(*est, 0))
}

func ptr(f float64) *float64 { return &f }
