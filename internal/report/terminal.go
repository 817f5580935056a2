// internal/report/terminal.go
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// TableOptions controls the terminal renderers.
type TableOptions struct {
	Metric  audit.Metric
	TopN    int
	ShowAll bool
}

func (o TableOptions) metric() audit.Metric {
	if o.Metric == "" {
		return audit.ExactMatchRate
	}
	return o.Metric
}

// createStandardTable creates a table writer with the formatting shared by
// every terminal view.
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// RenderLeaderboard writes the overall provider ranking. Unless ShowAll is
// set only the first TopN rows are written, followed by a note on how many
// were hidden.
func RenderLeaderboard(w io.Writer, rows []leaderboard.Row, opts TableOptions) error {
	metric := opts.metric()
	topN := opts.TopN
	if topN <= 0 {
		topN = leaderboard.DefaultTopN
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No provider has valid results.")
		return err
	}

	visible := leaderboard.Top(rows, topN, opts.ShowAll)
	table := createStandardTable([]string{"Rank", "Provider", "Avg " + MetricLabel(metric), "Models", "Data Points"}, w)
	for i, row := range visible {
		_ = table.Append([]string{
			"#" + strconv.Itoa(i+1),
			row.Provider,
			colorScore(metric, row.AvgScore, FormatScore(metric, row.AvgScore)),
			strconv.Itoa(row.ModelCount),
			strconv.Itoa(row.DataPoints),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}
	if hidden := len(rows) - len(visible); hidden > 0 {
		_, err := fmt.Fprintf(w, "\nShowing top %d of %d providers (use --all to show all).\n", len(visible), len(rows))
		return err
	}
	return nil
}

// RenderProviderStats writes the per-endpoint comparison for one model.
func RenderProviderStats(w io.Writer, model string, stats []leaderboard.Stat, opts TableOptions) error {
	metric := opts.metric()
	if _, err := fmt.Fprintf(w, "Provider Comparison - %s\n\n", model); err != nil {
		return err
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "No endpoint has valid results for this model.")
		return err
	}

	table := createStandardTable([]string{"Rank", "Endpoint", "Average", "Min", "Max", "Latest", "Trend", "Runs"}, w)
	for i, stat := range stats {
		trend := ""
		if stat.Trend != 0 {
			arrow := "▲"
			if stat.Trend < 0 {
				arrow = "▼"
			}
			trend = arrow + " " + FormatDelta(metric, stat.Trend)
		}
		_ = table.Append([]string{
			"#" + strconv.Itoa(i+1),
			stat.Provider,
			colorScore(metric, stat.AvgScore, FormatScore(metric, stat.AvgScore)),
			FormatScore(metric, stat.MinScore),
			FormatScore(metric, stat.MaxScore),
			FormatScore(metric, stat.LatestScore),
			trend,
			strconv.Itoa(stat.DataPoints),
		})
	}
	return table.Render()
}

// RenderSeries writes the time series of one model, one row per run and one
// column per active endpoint. Missing values print as "-".
func RenderSeries(w io.Writer, series leaderboard.Series, opts TableOptions) error {
	metric := opts.metric()
	if len(series.Points) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded for this model.")
		return err
	}

	headers := append([]string{"Time"}, series.Active...)
	table := createStandardTable(headers, w)
	for _, point := range series.Points {
		row := make([]string, 0, len(headers))
		row = append(row, FormatChartTime(point.Timestamp))
		for _, endpoint := range series.Active {
			v, ok := point.Values[endpoint]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, colorScore(metric, v, FormatScore(metric, v)))
		}
		_ = table.Append(row)
	}
	return table.Render()
}
