package model

const (
	// UnknownName is the sentinel for a tree id or species that is absent
	// from the source row. A documented presentation value, not an error.
	UnknownName = "unknown"

	// UnknownNeighborhood is the sentinel for a missing or unresolvable
	// neighborhood name.
	UnknownNeighborhood = "Unknown"
)

// Tree is a single geolocated street-tree record. It is created once during
// ingest and its three score fields are filled by the two batch scoring
// passes; after that the record is never mutated.
type Tree struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	Sidewalk     string   `json:"sidewalk"`
	Problems     string   `json:"problems"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Neighborhood string   `json:"neighborhood"`
	Species      string   `json:"species"`
	RentEstimate *float64 `json:"rent_estimate,omitempty"`

	DensityScore       float64 `json:"density_score"`
	AffordabilityScore float64 `json:"affordability_score"`
	HealthScore        int     `json:"health_score"`
	AccessibilityScore float64 `json:"accessibility_score"`
}

// Neighborhood is a named interpolation anchor. Immutable after creation.
type Neighborhood struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RentTable maps a canonical neighborhood key to a median asking rent.
// Built once during ingest and read-only afterward. Keys are produced by
// ingest.RentKey and lookups must use the same normalization.
type RentTable map[string]float64

// Rent returns the rent for a canonical key, and whether it is known.
func (t RentTable) Rent(key string) (float64, bool) {
	r, ok := t[key]
	return r, ok
}
