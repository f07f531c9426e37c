package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidity-radar/internal/app"
)

var (
	showAlertLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the latest snapshots, baselines, and recent alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showAlertLimit <= 0 {
			return fmt.Errorf("--alerts must be greater than zero")
		}

		opts := app.ShowOptions{
			AlertLimit: showAlertLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showAlertLimit, "alerts", 10, "Number of recent alerts to display")
}
