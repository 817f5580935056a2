// internal/cli/model.go
package difr

import (
	"fmt"
	"strings"

	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/mwiater/difr/internal/report"
	"github.com/spf13/cobra"
)

// newModelCmd implements 'model', the per-model time series and provider
// comparison. Without an argument the first model is shown.
func newModelCmd(a *app) *cobra.Command {
	var (
		list       bool
		jsonOutput bool
		metricName string
	)
	cmd := &cobra.Command{
		Use:   "model [name]",
		Short: "Show one model's provider comparison and history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := parseMetric(metricName)
			if err != nil {
				return err
			}
			ctx, stop := commandContext(cmd)
			defer stop()

			ds := a.loadDataset(ctx)
			models := leaderboard.Models(ds.Records)
			out := cmd.OutOrStdout()
			if list {
				if jsonOutput {
					return writeJSON(out, models)
				}
				for _, m := range models {
					fmt.Fprintln(out, m)
				}
				return nil
			}
			if len(models) == 0 {
				return fmt.Errorf("no models loaded")
			}

			view := report.NewDashboardView(ds, report.Options{Metric: metric})
			selected := view.DefaultModel
			if len(args) == 1 {
				selected = args[0]
			}
			mv, ok := view.Model(selected)
			if !ok {
				return fmt.Errorf("unknown model %q (available: %s)", selected, strings.Join(models, ", "))
			}
			if jsonOutput {
				return writeJSON(out, mv)
			}

			printSourceNotice(out, ds)
			opts := report.TableOptions{Metric: metric}
			fmt.Fprintf(out, "Provider Performance Over Time - %s\n\n", selected)
			if err := report.RenderSeries(out, mv.Series, opts); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return report.RenderProviderStats(out, selected, mv.Stats, opts)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available models")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the model view as JSON")
	cmd.Flags().StringVarP(&metricName, "metric", "m", string(audit.ExactMatchRate), "metric to aggregate")
	return cmd
}
