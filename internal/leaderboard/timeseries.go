package leaderboard

import (
	"slices"
	"strings"

	"github.com/mwiater/difr/internal/audit"
	"github.com/samber/lo"
)

// Point is one audit run of the selected model. Values holds only valid
// scores; an endpoint without data has no key.
type Point struct {
	Timestamp string             `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Series is the chart data for one model.
type Series struct {
	Model string `json:"model"`
	// Active lists endpoints with at least one valid point, in encounter order.
	Active []string `json:"active"`
	Points []Point  `json:"points"`
}

// forModel returns the records of model sorted by timestamp. Records with
// equal timestamps keep their relative order.
func forModel(records []audit.Record, model string) []audit.Record {
	filtered := lo.Filter(records, func(r audit.Record, _ int) bool { return r.Model == model })
	slices.SortStableFunc(filtered, func(a, b audit.Record) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})
	return filtered
}

// TimeSeries builds the chart series for model. Trailing points with no valid
// value for any active endpoint are dropped; leading and interior gaps stay.
func TimeSeries(records []audit.Record, model string, metric audit.Metric) Series {
	runs := forModel(records, model)
	series := Series{Model: model, Points: make([]Point, 0, len(runs))}

	seen := make(map[string]struct{})
	for _, rec := range runs {
		point := Point{Timestamp: rec.Timestamp, Values: make(map[string]float64)}
		for _, endpoint := range rec.EndpointNames() {
			score := metric.Value(rec.Providers[endpoint])
			if score == nil {
				continue
			}
			point.Values[endpoint] = *score
			if _, ok := seen[endpoint]; !ok {
				seen[endpoint] = struct{}{}
				series.Active = append(series.Active, endpoint)
			}
		}
		series.Points = append(series.Points, point)
	}

	if len(series.Active) == 0 {
		return series
	}
	last := len(series.Points) - 1
	for last >= 0 && len(series.Points[last].Values) == 0 {
		last--
	}
	series.Points = series.Points[:last+1]
	return series
}
