// Package geo provides geodesic distance math, a k-d tree over tree
// coordinates, and nearest-neighborhood rent interpolation.
package geo

import "math"

const (
	// earthRadiusMeters is the spherical-earth radius used by haversine.
	earthRadiusMeters = 6371000.0

	// metersPerDegreeLat converts a latitude-degree gap to meters.
	metersPerDegreeLat = 111132.0

	// metersPerDegreeLonEquator converts a longitude-degree gap to meters
	// at the equator; the actual conversion scales by cos(latitude).
	metersPerDegreeLonEquator = 111320.0
)

// Haversine returns the great-circle distance in meters between two
// coordinate pairs on a spherical earth. No ellipsoid correction.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// AxisDistance converts a single-axis degree gap into meters, used only for
// k-d pruning. Axis 0 is latitude, axis 1 is longitude; longitude degrees
// shrink with cos of the reference latitude. A zero gap is zero without
// invoking trig, and a non-finite or negative cosine clamps to zero (cannot
// happen for valid latitudes, but the pruning bound must never go negative).
func AxisDistance(axis int, degreeGap, refLat float64) float64 {
	if degreeGap == 0 {
		return 0
	}
	gap := math.Abs(degreeGap)
	if axis == 0 {
		return gap * metersPerDegreeLat
	}
	cos := math.Cos(refLat * math.Pi / 180)
	if math.IsNaN(cos) || math.IsInf(cos, 0) || cos < 0 {
		cos = 0
	}
	return gap * metersPerDegreeLonEquator * cos
}
