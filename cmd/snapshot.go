package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airbnb-dashboard/models"
	"airbnb-dashboard/server"
	"airbnb-dashboard/services"
	"airbnb-dashboard/snapshot"
)

var (
	snapshotBaseURL string
	snapshotOut     string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save PNG screenshots of dashboard views with headless Chrome",
	Long: `snapshot captures the overview, the guest-favourite and certified-host views
and one view per area. Without --base-url an in-process dashboard is started
on a random local port and captured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotOut != "" {
			cfg.SnapshotDir = snapshotOut
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache := services.NewDatasetCache(services.NewLoader(logger), logger)
		var stats *models.Stats
		if ds, err := cache.GetFirst(cfg.DataPaths()...); err != nil {
			logger.Warn("[snapshot] %v; capturing the overview only", err)
		} else {
			stats = ds.Stats
		}

		baseURL := snapshotBaseURL
		if baseURL == "" {
			serveCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			addr, err := startLocalServer(serveCtx, cache)
			if err != nil {
				return err
			}
			baseURL = "http://" + addr
		}

		capturer := snapshot.New(snapshot.Options{
			BaseURL:     baseURL,
			OutDir:      cfg.SnapshotDir,
			ChromeBin:   cfg.ChromeBin,
			Concurrency: cfg.SnapshotConcurrency,
			RateLimitMs: cfg.SnapshotRateLimitMs,
			MaxRetries:  cfg.MaxRetries,
		}, logger)

		paths, err := capturer.Capture(ctx, snapshot.DefaultViews(stats))
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", p)
		}
		return err
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotBaseURL, "base-url", "", "dashboard to capture (default: start one locally)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "output directory (overrides SNAPSHOT_DIR)")
	rootCmd.AddCommand(snapshotCmd)
}

// startLocalServer serves the dashboard on a random loopback port until ctx
// is cancelled and returns its address.
func startLocalServer(ctx context.Context, cache *services.DatasetCache) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	srv, err := server.New(server.Config{Addr: ln.Addr().String(), DataPaths: cfg.DataPaths()}, cache, logger)
	if err != nil {
		ln.Close()
		return "", err
	}
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			logger.Error("[snapshot] Local server stopped: %v", err)
		}
	}()
	return ln.Addr().String(), nil
}
