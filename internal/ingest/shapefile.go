package ingest

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geomlib "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/canopy-cli/internal/model"
)

// nameAttributes are the shapefile attribute names that can carry a
// neighborhood name, checked in order.
var nameAttributes = []string{"NAME", "NTANAME", "NEIGHBORHOOD"}

// NeighborhoodsFromShapefile reads a point or polygon shapefile and
// produces the same neighborhood list a CSV would. Polygon features are
// collapsed to their area centroid, which is what the interpolator anchors
// on. Features without a usable name or geometry are skipped with a debug
// log, mirroring the silent-drop policy for malformed CSV rows.
func NeighborhoodsFromShapefile(path string) ([]model.Neighborhood, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for _, want := range nameAttributes {
		for i, f := range reader.Fields() {
			if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), want) {
				nameIdx = i
				break
			}
		}
		if nameIdx >= 0 {
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("ingest: shapefile %s has no name attribute (tried %v)", path, nameAttributes)
	}

	log := zap.L().With(zap.String("component", "ingest.shapefile"))

	var hoods []model.Neighborhood
	for reader.Next() {
		n, shape := reader.Shape()
		if shape == nil {
			continue
		}

		name := CanonicalName(reader.Attribute(nameIdx))
		if name == "" {
			name = model.UnknownNeighborhood
		}

		lat, lon, ok := shapeCentroid(shape)
		if !ok {
			log.Debug("skipping feature without usable geometry",
				zap.Int("feature", n), zap.String("name", name))
			continue
		}
		hoods = append(hoods, model.Neighborhood{Name: name, Latitude: lat, Longitude: lon})
	}

	log.Info("loaded neighborhoods from shapefile",
		zap.String("path", path), zap.Int("count", len(hoods)))
	return hoods, nil
}

// shapeCentroid reduces a shapefile geometry to a single anchor
// coordinate. Points pass through; polygons use their area centroid.
func shapeCentroid(s shp.Shape) (lat, lon float64, ok bool) {
	switch shape := s.(type) {
	case *shp.Point:
		return shape.Y, shape.X, true

	case *shp.Polygon:
		poly := polygonToGeom(shape)
		if poly == nil {
			return 0, 0, false
		}
		c, err := xy.Centroid(poly)
		if err != nil || len(c) < 2 {
			return 0, 0, false
		}
		return c[1], c[0], true

	default:
		return 0, 0, false
	}
}

// polygonToGeom converts the first ring of a shapefile polygon to a
// go-geom polygon. Interior holes do not move the anchor enough to matter
// for interpolation, so only the outer ring is kept.
func polygonToGeom(p *shp.Polygon) *geomlib.Polygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}

	flat := make([]float64, 0, end*2)
	for j := int32(0); j < end; j++ {
		flat = append(flat, p.Points[j].X, p.Points[j].Y)
	}

	return geomlib.NewPolygonFlat(geomlib.XY, flat, []int{len(flat)})
}
