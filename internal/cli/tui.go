// internal/cli/tui.go
package difr

import (
	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/logging"
	"github.com/mwiater/difr/internal/tui"
	"github.com/spf13/cobra"
)

// newTUICmd implements 'tui', the interactive terminal dashboard.
func newTUICmd(a *app) *cobra.Command {
	var metricName string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the leaderboard interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := parseMetric(metricName)
			if err != nil {
				return err
			}
			// Console logging would draw over the alt screen.
			if err := logging.Init(logging.Options{Path: a.cfg.LogFile, Debug: a.cfg.Debug, Quiet: true}); err != nil {
				return err
			}
			ctx, stop := commandContext(cmd)
			defer stop()

			return tui.Run(ctx, a.newLoader(), tui.Options{
				Metric: metric,
				TopN:   a.cfg.LeaderboardTopN(),
				Title:  a.cfg.Title,
			})
		},
	}
	cmd.Flags().StringVarP(&metricName, "metric", "m", string(audit.ExactMatchRate), "metric to aggregate")
	return cmd
}
