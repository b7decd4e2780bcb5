package enrich

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/canopy-cli/internal/ingest"
	"github.com/sells-group/canopy-cli/internal/tabular"
)

// LoadInputs reads the three datasets from disk, bridging formats by
// extension: neighborhoods accept CSV or a polygon shapefile, rents accept
// CSV or XLSX, trees are always CSV. The datasets are read exactly once;
// nothing re-reads or watches them afterward.
func LoadInputs(treesPath, hoodsPath, rentsPath string) (Inputs, error) {
	var in Inputs

	treesRaw, err := os.ReadFile(treesPath)
	if err != nil {
		return in, eris.Wrapf(err, "enrich: read trees %s", treesPath)
	}
	in.Trees = tabular.Parse(string(treesRaw))

	switch ext(hoodsPath) {
	case ".shp":
		hoods, err := ingest.NeighborhoodsFromShapefile(hoodsPath)
		if err != nil {
			return in, err
		}
		in.Neighborhoods = hoods
	default:
		raw, err := os.ReadFile(hoodsPath)
		if err != nil {
			return in, eris.Wrapf(err, "enrich: read neighborhoods %s", hoodsPath)
		}
		hoods, dropped := ingest.Neighborhoods(tabular.Parse(string(raw)))
		if dropped > 0 {
			zap.L().Warn("dropped neighborhood rows with bad coordinates", zap.Int("dropped", dropped))
		}
		in.Neighborhoods = hoods
	}

	switch ext(rentsPath) {
	case ".xlsx":
		table, err := tabular.ParseXLSX(rentsPath)
		if err != nil {
			return in, err
		}
		in.Rents = table
	default:
		raw, err := os.ReadFile(rentsPath)
		if err != nil {
			return in, eris.Wrapf(err, "enrich: read rents %s", rentsPath)
		}
		in.Rents = tabular.Parse(string(raw))
	}

	return in, nil
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
