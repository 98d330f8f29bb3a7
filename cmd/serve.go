package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airbnb-dashboard/server"
	"airbnb-dashboard/services"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache := services.NewDatasetCache(services.NewLoader(logger), logger)
		srv, err := server.New(server.Config{Addr: cfg.HTTPAddr, DataPaths: cfg.DataPaths()}, cache, logger)
		if err != nil {
			return err
		}

		// Warm the cache; a missing file is reported per request instead.
		if ds, err := cache.GetFirst(cfg.DataPaths()...); err != nil {
			logger.Warn("[serve] %v (%s)", err, services.DataFileHint)
		} else {
			logger.Info("[serve] Loaded %d listings from %s", len(ds.Listings), ds.Path)
		}

		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
