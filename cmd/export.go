package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

var (
	exportFormat  string
	exportOut     string
	exportFilters filterFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered listings to CSV, XLSX, PostgreSQL or SQLite",
	Example: `  airbnb-dashboard export --format csv --city Tokyo --city Sydney
  airbnb-dashboard export --format xlsx --price-max 150 --out report.xlsx
  airbnb-dashboard export --format sqlite --guest-favourites-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := exportFilters.options(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		listings, _, _, err := services.NewLoader(logger).LoadFirst(cfg.DataPaths()...)
		if err != nil {
			return err
		}
		filtered := services.FilterData(listings, opts)
		logger.Info("[export] %d of %d listings selected", len(filtered), len(listings))

		dest, err := exportListings(ctx, exportFormat, exportOut, filtered)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d listings to %s\n", len(filtered), dest)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, xlsx, postgres or sqlite")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults under EXPORT_DIR, or SQLITE_PATH for sqlite)")
	exportFilters.register(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

// exportListings writes listings in the given format and returns where they
// went.
func exportListings(ctx context.Context, format, out string, listings []*models.Listing) (string, error) {
	switch format {
	case "csv":
		if out == "" {
			out = filepath.Join(cfg.ExportDir, "airbnb_filtered_data.csv")
		}
		w, err := storage.CreateCSVFile(out)
		if err != nil {
			return "", err
		}
		return out, writeAndClose(w, listings)

	case "xlsx":
		if out == "" {
			out = filepath.Join(cfg.ExportDir, "airbnb_filtered_data.xlsx")
		}
		w, err := storage.CreateXLSXFile(out)
		if err != nil {
			return "", err
		}
		insights := services.NewInsightService(logger)
		if err := w.WriteSummary(insights.CityStats(listings), insights.AreaStats(listings)); err != nil {
			_ = w.Close()
			return "", err
		}
		return out, writeAndClose(w, listings)

	case "sqlite":
		if out == "" {
			out = cfg.SQLitePath
		}
		w, err := storage.NewSQLiteWriter(ctx, out, logger)
		if err != nil {
			return "", err
		}
		return out, writeAndClose(w, listings)

	case "postgres":
		retry := &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		}
		w, err := storage.NewPostgresWriter(ctx, cfg.DSN(), retry, logger)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return "", err
		}
		return fmt.Sprintf("postgres://%s:%s/%s (table: listings)", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB),
			writeAndClose(w, listings)

	default:
		return "", fmt.Errorf("unknown export format %q (want csv, xlsx, postgres or sqlite)", format)
	}
}

func writeAndClose(w storage.ListingWriter, listings []*models.Listing) error {
	if err := w.Write(listings); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
