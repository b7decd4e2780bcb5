package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// rentKeyAliases canonicalizes known naming variants between the tree
// census neighborhood names and the rent dataset. Keys are post-fold
// spellings; values must themselves be fixed points of RentKey so that
// resolution never chains.
var rentKeyAliases = map[string]string{
	"bedford stuyvesant":        "bedford-stuyvesant",
	"bedstuy":                   "bedford-stuyvesant",
	"hells kitchen":             "clinton",
	"hell's kitchen":            "clinton",
	"midtown south":             "midtown",
	"flatiron district":         "flatiron",
	"prospect lefferts gardens": "prospect-lefferts gardens",
	"stuyvesant town":           "stuyvesant town/pcv",
	"soho-little italy":         "soho",
}

// LoadAliasOverrides merges a YAML file of extra alias mappings into the
// fixed table. Keys are folded without alias resolution, so an override
// for an already-aliased spelling replaces the built-in mapping rather
// than registering under its old target. Values resolve through RentKey
// to keep every target a fixed point. Intended for new rent dataset
// vintages that rename areas; the file is optional.
func LoadAliasOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "ingest: read alias overrides %s", path)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return eris.Wrap(err, "ingest: parse alias overrides")
	}

	for from, to := range overrides {
		rentKeyAliases[foldKey(from)] = RentKey(to)
	}
	return nil
}
