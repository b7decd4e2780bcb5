package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/canopy-cli/internal/config"
	"github.com/sells-group/canopy-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Enrich once, then serve the scored collection over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Flag overrides apply before validation so --port can stand in
		// for a missing or bad configured port.
		applyServePort(cfg, servePort)
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		result, err := loadAndEnrich(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("collection ready", zap.Int("trees", len(result.Trees)))

		return server.New(result, cfg.Server).Start(ctx)
	},
}

func applyServePort(c *config.Config, port int) {
	if port != 0 {
		c.Server.Port = port
	}
}

func init() {
	registerDataFlags(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
