package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration for a given command mode. Modes keep
// the checks scoped: enrich runs fine without a server section, serve
// without a store.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "enrich":
		if c.Data.Trees == "" {
			problems = append(problems, "data.trees is required")
		}
		if c.Data.Neighborhoods == "" {
			problems = append(problems, "data.neighborhoods is required")
		}
		if c.Data.Rents == "" {
			problems = append(problems, "data.rents is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RatePerSecond <= 0 {
			problems = append(problems, "server.rate_per_second must be > 0")
		}
		if c.Server.RateBurst <= 0 {
			problems = append(problems, "server.rate_burst must be > 0")
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
