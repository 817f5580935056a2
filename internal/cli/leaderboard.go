// internal/cli/leaderboard.go
package difr

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/mwiater/difr/internal/loader"
	"github.com/mwiater/difr/internal/report"
	"github.com/spf13/cobra"
)

// newLeaderboardCmd implements 'leaderboard', the overall provider ranking.
func newLeaderboardCmd(a *app) *cobra.Command {
	var (
		showAll    bool
		jsonOutput bool
		metricName string
	)
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb"},
		Short:   "Show the overall provider ranking",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := parseMetric(metricName)
			if err != nil {
				return err
			}
			ctx, stop := commandContext(cmd)
			defer stop()

			ds := a.loadDataset(ctx)
			rows := leaderboard.Overall(ds.Records, metric)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, leaderboard.Top(rows, a.cfg.LeaderboardTopN(), showAll))
			}
			printSourceNotice(out, ds)
			return report.RenderLeaderboard(out, rows, report.TableOptions{
				Metric:  metric,
				TopN:    a.cfg.LeaderboardTopN(),
				ShowAll: showAll,
			})
		},
	}
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "show every provider instead of the top N")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print rows as JSON")
	cmd.Flags().StringVarP(&metricName, "metric", "m", string(audit.ExactMatchRate), "metric to rank by")
	return cmd
}

func parseMetric(name string) (audit.Metric, error) {
	metric, ok := audit.ParseMetric(name)
	if !ok {
		names := make([]string, 0, len(audit.Metrics))
		for _, m := range audit.Metrics {
			names = append(names, string(m))
		}
		return "", fmt.Errorf("unknown metric %q (expected one of: %s)", name, strings.Join(names, ", "))
	}
	return metric, nil
}

func printSourceNotice(out io.Writer, ds loader.Dataset) {
	if ds.Source != loader.SourceFallback {
		return
	}
	warn := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s live data unavailable; showing sample data\n\n", warn("!"))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
