package cmd

import (
	"github.com/spf13/cobra"

	"airbnb-dashboard/services"
)

var summaryFilters filterFlags

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print load statistics and dashboard metrics to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := summaryFilters.options(cmd)
		if err != nil {
			return err
		}

		listings, stats, _, err := services.NewLoader(logger).LoadFirst(cfg.DataPaths()...)
		if err != nil {
			return err
		}

		filtered := services.FilterData(listings, opts)
		report := services.NewInsightService(logger).Generate(filtered)
		services.NewPrinter(cmd.OutOrStdout()).Print(stats, report)
		return nil
	},
}

func init() {
	summaryFilters.register(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}
