package cli

import (
	"github.com/spf13/cobra"

	"liquidity-radar/internal/app"
)

var (
	simulateSample     string
	simulateCheck      bool
	simulateSpreadMed  string
	simulateDepthMed   string
	simulateImpactMed  string
	simulateVolumeMean string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Derive metrics from a sample file, optionally checking the rule table",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			SamplePath:       simulateSample,
			Check:            simulateCheck,
			SpreadBpsMedian:  simulateSpreadMed,
			DepthTotalMedian: simulateDepthMed,
			ImpactMedian:     simulateImpactMed,
			VolumeMean:       simulateVolumeMean,
		}
		return getApp().Simulate(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSample, "sample", "", "Path to a normalized venue sample JSON file")
	simulateCmd.Flags().BoolVar(&simulateCheck, "check", false, "Evaluate detection rules against a supplied baseline")
	simulateCmd.Flags().StringVar(&simulateSpreadMed, "spread-median", "", "Baseline spread median in bps")
	simulateCmd.Flags().StringVar(&simulateDepthMed, "depth-median", "", "Baseline depth median in quote currency")
	simulateCmd.Flags().StringVar(&simulateImpactMed, "impact-median", "", "Baseline large-tier impact median in bps")
	simulateCmd.Flags().StringVar(&simulateVolumeMean, "volume-mean", "", "Baseline 24h volume mean in quote currency")
}
