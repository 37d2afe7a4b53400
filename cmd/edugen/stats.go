package main

import (
	"github.com/spf13/cobra"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/container"
	"github.com/saulo-duarte/edugen-api/internal/generationlog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print global generation statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		limit, _ := cmd.Flags().GetInt("limit")

		settings, err := config.Load()
		if err != nil {
			return err
		}
		c, err := container.New(cmd.Context(), settings)
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.GenerationLogContainer.Service.GlobalStats(cmd.Context(), days, limit)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

func init() {
	statsCmd.Flags().Int("days", generationlog.DefaultGlobalStatsDays, "trailing window in days")
	statsCmd.Flags().Int("limit", generationlog.DefaultGlobalLimit, "maximum entries scanned")
}
