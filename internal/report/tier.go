// internal/report/tier.go
// Package report renders the leaderboard views: a standalone HTML dashboard
// and tier-colored terminal tables.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/mwiater/difr/internal/audit"
)

// ScoreTier buckets an exact-match score for coloring.
type ScoreTier string

const (
	TierExcellent ScoreTier = "excellent"
	TierGood      ScoreTier = "good"
	TierFair      ScoreTier = "fair"
	TierLow       ScoreTier = "low"
	TierMuted     ScoreTier = "muted"
)

// Tier returns the color tier for score. Boundaries are inclusive lower
// bounds: exactly 0.95 is excellent.
func Tier(score float64) ScoreTier {
	switch {
	case score >= 0.95:
		return TierExcellent
	case score >= 0.90:
		return TierGood
	case score >= 0.85:
		return TierFair
	case score >= 0.80:
		return TierLow
	default:
		return TierMuted
	}
}

// Hex returns the tier's display color.
func (t ScoreTier) Hex() string {
	switch t {
	case TierExcellent:
		return "#55C89F"
	case TierGood:
		return "#A6D8C0"
	case TierFair:
		return "#FFB3A8"
	case TierLow:
		return "#FF563F"
	default:
		return "#8A8A8A"
	}
}

// ChartPalette colors time-series lines, cycling by endpoint index.
var ChartPalette = []string{
	"#FF563F",
	"#FFB3A8",
	"#6E73FF",
	"#BEC9FF",
	"#606060",
	"#D6D5D5",
	"#55C89F",
	"#A6D8C0",
	"#FFD24D",
	"#FFED9E",
}

// ChartColor returns the palette color for the i-th active endpoint.
func ChartColor(i int) string {
	return ChartPalette[i%len(ChartPalette)]
}

// FormatPercent renders a rate as a percentage with two decimals.
func FormatPercent(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 2, 64) + "%"
}

// FormatTrend renders a change in rate with an explicit sign for gains.
func FormatTrend(delta float64) string {
	if delta > 0 {
		return "+" + FormatPercent(delta)
	}
	return FormatPercent(delta)
}

// FormatScore formats a value of metric: rates as percentages, the rest as
// plain numbers.
func FormatScore(metric audit.Metric, v float64) string {
	if isRate(metric) {
		return FormatPercent(v)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatDelta is FormatScore for a difference between two values.
func FormatDelta(metric audit.Metric, v float64) string {
	if isRate(metric) {
		return FormatTrend(v)
	}
	if v > 0 {
		return "+" + strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// MetricLabel is the human-readable column title for metric.
func MetricLabel(metric audit.Metric) string {
	switch metric {
	case audit.ExactMatchRate:
		return "Exact Match Rate"
	case audit.AvgProb:
		return "Avg Probability"
	case audit.AvgMargin:
		return "Avg Margin"
	case audit.AvgLogitRank:
		return "Avg Logit Rank"
	case audit.AvgGumbelRank:
		return "Avg Gumbel Rank"
	case audit.InfiniteMarginRate:
		return "Infinite Margin Rate"
	default:
		return string(metric)
	}
}

func isRate(metric audit.Metric) bool {
	switch metric {
	case audit.ExactMatchRate, audit.AvgProb, audit.InfiniteMarginRate, "":
		return true
	}
	return false
}

// FormatChartTime renders an audit timestamp as a short axis label
// ("Sep 1, 09:30 AM"). Unparseable input is returned unchanged.
func FormatChartTime(ts string) string {
	t, err := time.Parse("2006-01-02T15:04:05", ts)
	if err != nil {
		return ts
	}
	return t.Format("Jan 2, 03:04 PM")
}

var tierColors = map[ScoreTier]*color.Color{}

func init() {
	for _, t := range []ScoreTier{TierExcellent, TierGood, TierFair, TierLow} {
		var r, g, b int
		_, _ = fmt.Sscanf(t.Hex(), "#%02X%02X%02X", &r, &g, &b)
		tierColors[t] = color.RGB(r, g, b).Add(color.Bold)
	}
	tierColors[TierMuted] = color.New(color.FgHiBlack)
}

// colorScore wraps text in the tier color of score. Only exact-match scores
// are tiered; other metrics are returned plain.
func colorScore(metric audit.Metric, score float64, text string) string {
	if metric != audit.ExactMatchRate {
		return text
	}
	return tierColors[Tier(score)].Sprint(text)
}
