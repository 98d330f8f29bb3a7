package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"airbnb-dashboard/config"
	"airbnb-dashboard/utils"
)

var (
	// Global flags, applied on top of the environment
	flagDataPath string
	flagLogLevel string

	// Loaded configuration
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "airbnb-dashboard",
	Short: "Clean, filter and explore Airbnb listing data",
	Long: `airbnb-dashboard loads an Airbnb listings CSV, normalises its locale-specific
numbers and serves a filterable dashboard and JSON API over the cleaned data.
The same pipeline is available from the terminal through the summary, export
and snapshot commands.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data", "", "listings CSV to load (overrides DATA_PATH and disables the fallback path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

func loadConfig() {
	cfg = config.Load()
	if flagDataPath != "" {
		cfg.DataPath = flagDataPath
		cfg.DataFallbackPath = ""
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logger = utils.NewLoggerTo(os.Stdout, os.Stderr, utils.ParseLevel(cfg.LogLevel))
}
