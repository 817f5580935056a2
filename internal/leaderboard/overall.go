// internal/leaderboard/overall.go
// Package leaderboard derives the leaderboard, time series and per-model
// provider statistics from a set of audit records. Every function is a pure
// computation over its inputs.
package leaderboard

import (
	"slices"
	"strings"

	"github.com/mwiater/difr/internal/audit"
	"github.com/samber/lo"
)

// DefaultTopN is the number of leaderboard rows shown before "show all".
const DefaultTopN = 10

// Row is one provider's entry in the overall leaderboard.
type Row struct {
	Provider   string  `json:"provider"`
	AvgScore   float64 `json:"avgScore"`
	ModelCount int     `json:"modelCount"`
	DataPoints int     `json:"dataPoints"`
}

type accumulator struct {
	provider string
	sum      float64
	count    int
	models   map[string]struct{}
}

// ProviderName returns the base organization of an endpoint name: the part
// before the first "/".
func ProviderName(endpoint string) string {
	name, _, _ := strings.Cut(endpoint, "/")
	return name
}

// Overall ranks providers by their mean score over every valid data point of
// every endpoint variant, across all models and timestamps. Ties keep the
// order in which providers were first encountered.
func Overall(records []audit.Record, metric audit.Metric) []Row {
	var order []*accumulator
	byProvider := make(map[string]*accumulator)

	for _, rec := range records {
		for _, endpoint := range rec.EndpointNames() {
			score := metric.Value(rec.Providers[endpoint])
			if score == nil {
				continue
			}
			name := ProviderName(endpoint)
			acc, ok := byProvider[name]
			if !ok {
				acc = &accumulator{provider: name, models: make(map[string]struct{})}
				byProvider[name] = acc
				order = append(order, acc)
			}
			acc.sum += *score
			acc.count++
			acc.models[rec.Model] = struct{}{}
		}
	}

	rows := lo.Map(order, func(acc *accumulator, _ int) Row {
		return Row{
			Provider:   acc.provider,
			AvgScore:   acc.sum / float64(acc.count),
			ModelCount: len(acc.models),
			DataPoints: acc.count,
		}
	})
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareDesc(a.AvgScore, b.AvgScore)
	})
	return rows
}

// Top truncates rows to the first n unless showAll is set. It never copies;
// the toggle is a view concern only.
func Top(rows []Row, n int, showAll bool) []Row {
	if showAll || n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// Models returns the distinct model identifiers in record order.
func Models(records []audit.Record) []string {
	return lo.Uniq(lo.Map(records, func(r audit.Record, _ int) string { return r.Model }))
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
