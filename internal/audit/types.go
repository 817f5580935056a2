// internal/audit/types.go
// Package audit parses and normalizes per-run audit files that compare
// inference-provider outputs against a reference implementation.
package audit

import "math"

// ProviderMetric is one endpoint's measured performance for one audit run.
// Float fields are nil when the value is missing or non-finite.
type ProviderMetric struct {
	ExactMatchRate     *float64 `json:"exact_match_rate,omitempty"`
	AvgProb            *float64 `json:"avg_prob,omitempty"`
	AvgMargin          *float64 `json:"avg_margin,omitempty"`
	AvgLogitRank       *float64 `json:"avg_logit_rank,omitempty"`
	AvgGumbelRank      *float64 `json:"avg_gumbel_rank,omitempty"`
	InfiniteMarginRate *float64 `json:"infinite_margin_rate,omitempty"`
	TotalTokens        *int64   `json:"total_tokens,omitempty"`
	NSequences         *int64   `json:"n_sequences,omitempty"`
}

// Record is one audit run for one model at one point in time.
type Record struct {
	Model     string                    `json:"model"`
	Timestamp string                    `json:"timestamp"`
	Providers map[string]ProviderMetric `json:"providers"`
	// Endpoints lists the keys of Providers in document order.
	Endpoints []string `json:"-"`
	Filename  string   `json:"filename,omitempty"`
}

// EndpointNames returns the record's endpoint names in a stable order.
func (r Record) EndpointNames() []string {
	if len(r.Endpoints) == len(r.Providers) {
		return r.Endpoints
	}
	names := make([]string, 0, len(r.Providers))
	seen := make(map[string]struct{}, len(r.Providers))
	for _, name := range r.Endpoints {
		if _, ok := r.Providers[name]; ok {
			names = append(names, name)
			seen[name] = struct{}{}
		}
	}
	for _, name := range sortedKeys(r.Providers) {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// Metric selects one score out of a ProviderMetric.
type Metric string

const (
	ExactMatchRate     Metric = "exact_match_rate"
	AvgProb            Metric = "avg_prob"
	AvgMargin          Metric = "avg_margin"
	AvgLogitRank       Metric = "avg_logit_rank"
	AvgGumbelRank      Metric = "avg_gumbel_rank"
	InfiniteMarginRate Metric = "infinite_margin_rate"
)

// Metrics lists every selectable metric.
var Metrics = []Metric{ExactMatchRate, AvgProb, AvgMargin, AvgLogitRank, AvgGumbelRank, InfiniteMarginRate}

// ParseMetric resolves a metric name, defaulting to ExactMatchRate for "".
func ParseMetric(name string) (Metric, bool) {
	if name == "" {
		return ExactMatchRate, true
	}
	for _, m := range Metrics {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// Value returns the selected score, or nil when the metric has no data.
func (m Metric) Value(pm ProviderMetric) *float64 {
	var v *float64
	switch m {
	case ExactMatchRate, "":
		v = pm.ExactMatchRate
	case AvgProb:
		v = pm.AvgProb
	case AvgMargin:
		v = pm.AvgMargin
	case AvgLogitRank:
		v = pm.AvgLogitRank
	case AvgGumbelRank:
		v = pm.AvgGumbelRank
	case InfiniteMarginRate:
		v = pm.InfiniteMarginRate
	}
	if !Valid(v) {
		return nil
	}
	return v
}

// Valid reports whether v holds a finite number.
func Valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 { return &v }
