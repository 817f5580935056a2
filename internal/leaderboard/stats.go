package leaderboard

import (
	"slices"

	"github.com/mwiater/difr/internal/audit"
)

// Stat summarizes one endpoint's scores for a single model.
type Stat struct {
	Provider    string  `json:"provider"`
	AvgScore    float64 `json:"avgScore"`
	MinScore    float64 `json:"minScore"`
	MaxScore    float64 `json:"maxScore"`
	LatestScore float64 `json:"latestScore"`
	Trend       float64 `json:"trend"`
	DataPoints  int     `json:"dataPoints"`
}

// ProviderStats computes per-endpoint statistics for model, sorted by
// average score (descending, stable). Endpoints with no valid score are
// omitted.
//
// LatestScore is the most recent valid score in chronological order. Trend is
// the difference between the last two valid scores, or 0 with fewer than two.
func ProviderStats(records []audit.Record, model string, metric audit.Metric) []Stat {
	runs := forModel(records, model)

	var endpoints []string
	sequences := make(map[string][]*float64)
	for _, rec := range runs {
		for _, endpoint := range rec.EndpointNames() {
			if _, ok := sequences[endpoint]; !ok {
				endpoints = append(endpoints, endpoint)
			}
			sequences[endpoint] = append(sequences[endpoint], metric.Value(rec.Providers[endpoint]))
		}
	}

	stats := make([]Stat, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if stat, ok := summarize(endpoint, sequences[endpoint]); ok {
			stats = append(stats, stat)
		}
	}
	slices.SortStableFunc(stats, func(a, b Stat) int {
		return compareDesc(a.AvgScore, b.AvgScore)
	})
	return stats
}

// summarize reduces one endpoint's chronological sequence, where nil marks a
// run without a valid score.
func summarize(endpoint string, raw []*float64) (Stat, bool) {
	valid := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	if len(valid) == 0 {
		return Stat{}, false
	}

	stat := Stat{
		Provider:   endpoint,
		MinScore:   valid[0],
		MaxScore:   valid[0],
		DataPoints: len(valid),
	}
	var sum float64
	for _, v := range valid {
		sum += v
		stat.MinScore = min(stat.MinScore, v)
		stat.MaxScore = max(stat.MaxScore, v)
	}
	stat.AvgScore = sum / float64(len(valid))

	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] != nil {
			stat.LatestScore = *raw[i]
			break
		}
	}
	if n := len(valid); n >= 2 {
		stat.Trend = valid[n-1] - valid[n-2]
	}
	return stat, true
}
