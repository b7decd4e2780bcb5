package ingest

import (
	"context"
	"math"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/canopy-cli/internal/geo"
	"github.com/sells-group/canopy-cli/internal/model"
	"github.com/sells-group/canopy-cli/internal/tabular"
)

// Header candidates for the rent table's two semantic roles. Matching is
// case-insensitive; any other columns in the file are ignored.
var (
	rentNameHeaders  = []string{"neighborhood", "areaname", "area_name", "name"}
	rentValueHeaders = []string{"rent", "medianaskingrent", "median_rent", "median_asking_rent"}
)

// Neighborhoods builds the named-area list from a parsed table. Rows with
// unparseable or non-finite coordinates are dropped silently; that is
// expected noise in curated exports, not an error. Returns the survivors
// and the dropped-row count.
func Neighborhoods(t tabular.Table) ([]model.Neighborhood, int) {
	var hoods []model.Neighborhood
	dropped := 0
	for _, rec := range t.Records() {
		lat, okLat := parseCoord(field(rec, "latitude", "lat"))
		lon, okLon := parseCoord(field(rec, "longitude", "lon", "lng"))
		if !okLat || !okLon {
			dropped++
			continue
		}
		name := CanonicalName(field(rec, "name", "neighborhood", "ntaname"))
		if name == "" {
			name = model.UnknownNeighborhood
		}
		hoods = append(hoods, model.Neighborhood{Name: name, Latitude: lat, Longitude: lon})
	}
	return hoods, dropped
}

// Rents builds the rent table from a parsed table. The name and value
// columns are located by case-insensitive header matching; if either role
// is missing the whole lookup degrades to an empty table rather than an
// error, and every tree's rent estimate will be nil downstream.
func Rents(t tabular.Table) (model.RentTable, int) {
	nameCol := findHeader(t.Header, rentNameHeaders)
	valueCol := findHeader(t.Header, rentValueHeaders)
	if nameCol == "" || valueCol == "" {
		zap.L().Warn("ingest: rent table missing name or value column, lookup will be empty",
			zap.Strings("header", t.Header))
		return model.RentTable{}, len(t.Rows)
	}

	rents := model.RentTable{}
	dropped := 0
	for _, rec := range t.Records() {
		rent, ok := parseCoord(rec[valueCol])
		if !ok || rent < 0 {
			dropped++
			continue
		}
		rents[RentKey(rec[nameCol])] = rent
	}
	return rents, dropped
}

// Trees builds the primary point collection. Non-finite coordinates drop
// the row; every surviving tree resolves its nearest neighborhood and rent
// estimate against the already-built area list before Trees returns, so a
// returned Tree is never half-initialized. Density and composite scores
// are left for the later batch passes.
//
// Resolution fans out across a bounded worker group: each worker reads the
// shared, finalized area list and rent table and writes only its own
// trees' fields.
func Trees(ctx context.Context, t tabular.Table, hoods []model.Neighborhood, rents model.RentTable) ([]*model.Tree, int, error) {
	var trees []*model.Tree
	dropped := 0
	for _, rec := range t.Records() {
		lat, okLat := parseCoord(field(rec, "latitude", "lat"))
		lon, okLon := parseCoord(field(rec, "longitude", "lon", "lng"))
		if !okLat || !okLon {
			dropped++
			continue
		}

		trees = append(trees, &model.Tree{
			ID:        defaulted(field(rec, "tree_id", "id"), model.UnknownName),
			Status:    strings.TrimSpace(field(rec, "status")),
			Sidewalk:  strings.TrimSpace(field(rec, "sidewalk")),
			Problems:  strings.TrimSpace(field(rec, "problems")),
			Latitude:  lat,
			Longitude: lon,
			Species:   defaulted(strings.ToLower(field(rec, "spc_common", "species")), model.UnknownName),
		})
	}

	if err := resolveAll(ctx, trees, hoods, rents); err != nil {
		return nil, dropped, err
	}
	return trees, dropped, nil
}

// resolveAll assigns every tree's neighborhood and rent estimate in
// parallel. The only error it can return is context cancellation.
func resolveAll(ctx context.Context, trees []*model.Tree, hoods []model.Neighborhood, rents model.RentTable) error {
	lookup := func(name string) (float64, bool) {
		return rents.Rent(RentKey(name))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), 8))

	const chunk = 512
	for start := 0; start < len(trees); start += chunk {
		batch := trees[start:min(start+chunk, len(trees))]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, tree := range batch {
				tree.Neighborhood, tree.RentEstimate = geo.ResolveNeighborhood(tree.Latitude, tree.Longitude, hoods, lookup)
			}
			return nil
		})
	}
	return g.Wait()
}

// parseCoord parses a finite float. NaN and infinities count as
// unparseable because no downstream math may ever see them.
func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// field returns the first non-empty value among candidate column names,
// matching case-insensitively against the record's keys.
func field(rec map[string]string, names ...string) string {
	for _, want := range names {
		for col, v := range rec {
			if strings.EqualFold(strings.TrimSpace(col), want) && v != "" {
				return v
			}
		}
	}
	return ""
}

// findHeader locates the first header matching any candidate name,
// case-insensitively. Returns the header's original spelling or "".
func findHeader(header []string, candidates []string) string {
	for _, want := range candidates {
		for _, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), want) {
				return col
			}
		}
	}
	return ""
}

func defaulted(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
