package leaderboard

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mwiater/difr/internal/audit"
)

func record(model, ts string, scores ...any) audit.Record {
	rec := audit.Record{Model: model, Timestamp: ts, Providers: map[string]audit.ProviderMetric{}}
	for i := 0; i+1 < len(scores); i += 2 {
		name := scores[i].(string)
		var v *float64
		if f, ok := scores[i+1].(float64); ok {
			v = audit.Float(f)
		}
		rec.Providers[name] = audit.ProviderMetric{ExactMatchRate: v}
		rec.Endpoints = append(rec.Endpoints, name)
	}
	return rec
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var approxOpt = cmpopts.EquateApprox(0, 1e-9)

func TestProviderName(t *testing.T) {
	for in, want := range map[string]string{
		"providerX/fp8":     "providerX",
		"providerX/fp8/alt": "providerX",
		"bare":              "bare",
		"/fp8":              "",
	} {
		if got := ProviderName(in); got != want {
			t.Fatalf("ProviderName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOverallGroupsEndpointVariants(t *testing.T) {
	records := []audit.Record{
		record("org/a", "2024-01-01T00:00:00", "p/fp8", 0.9, "p/bf16", 0.7, "q/fp8", 0.95),
		record("org/b", "2024-01-02T00:00:00", "p/fp8", 0.8, "q/fp8", nil),
	}
	rows := Overall(records, audit.ExactMatchRate)
	want := []Row{
		{Provider: "q", AvgScore: 0.95, ModelCount: 1, DataPoints: 1},
		{Provider: "p", AvgScore: 0.8, ModelCount: 2, DataPoints: 3},
	}
	if diff := cmp.Diff(want, rows, approxOpt); diff != "" {
		t.Fatalf("Overall mismatch (-want +got):\n%s", diff)
	}
}

func TestOverallStableTies(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-01T00:00:00", "zz/fp8", 0.9, "aa/fp8", 0.9, "mm/fp8", 0.95),
	}
	rows := Overall(records, audit.ExactMatchRate)
	got := []string{rows[0].Provider, rows[1].Provider, rows[2].Provider}
	want := []string{"mm", "zz", "aa"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOverallSkipsProvidersWithoutValidData(t *testing.T) {
	nan := math.NaN()
	rec := record("m", "2024-01-01T00:00:00", "gone/fp8", nil)
	rec.Providers["inf/fp8"] = audit.ProviderMetric{ExactMatchRate: &nan}
	rec.Endpoints = append(rec.Endpoints, "inf/fp8")
	if rows := Overall([]audit.Record{rec}, audit.ExactMatchRate); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestTop(t *testing.T) {
	rows := make([]Row, 12)
	if got := Top(rows, DefaultTopN, false); len(got) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(got))
	}
	if got := Top(rows, DefaultTopN, true); len(got) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(got))
	}
	if got := Top(rows[:3], DefaultTopN, false); len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
}

func TestModels(t *testing.T) {
	records := []audit.Record{
		record("b", "2024-01-02T00:00:00"),
		record("a", "2024-01-01T00:00:00"),
		record("b", "2024-01-03T00:00:00"),
	}
	if diff := cmp.Diff([]string{"b", "a"}, Models(records)); diff != "" {
		t.Fatalf("Models mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoRunScenario(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-02T00:00:00", "p/fp8", 0.8),
		record("m", "2024-01-01T00:00:00", "p/fp8", 0.9),
	}

	rows := Overall(records, audit.ExactMatchRate)
	if len(rows) != 1 || rows[0].Provider != "p" || !approx(rows[0].AvgScore, 0.85) {
		t.Fatalf("unexpected leaderboard: %+v", rows)
	}

	stats := ProviderStats(records, "m", audit.ExactMatchRate)
	if len(stats) != 1 {
		t.Fatalf("expected 1 stat, got %d", len(stats))
	}
	s := stats[0]
	if !approx(s.Trend, -0.1) {
		t.Fatalf("trend = %v, want -0.1", s.Trend)
	}
	if s.LatestScore != 0.8 {
		t.Fatalf("latest = %v, want 0.8", s.LatestScore)
	}
	if s.MinScore != 0.8 || s.MaxScore != 0.9 || s.DataPoints != 2 {
		t.Fatalf("unexpected stat: %+v", s)
	}
}

func TestProviderStatsLatestAndTrend(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-01T00:00:00", "a/x", 0.90, "b/x", 0.70, "c/x", nil),
		record("m", "2024-01-02T00:00:00", "a/x", 0.95, "b/x", nil),
		record("m", "2024-01-03T00:00:00", "a/x", nil, "b/x", nil),
		record("other", "2024-01-04T00:00:00", "a/x", 0.1),
	}
	stats := ProviderStats(records, "m", audit.ExactMatchRate)
	want := []Stat{
		{Provider: "a/x", AvgScore: 0.925, MinScore: 0.90, MaxScore: 0.95, LatestScore: 0.95, Trend: 0.05, DataPoints: 2},
		{Provider: "b/x", AvgScore: 0.70, MinScore: 0.70, MaxScore: 0.70, LatestScore: 0.70, Trend: 0, DataPoints: 1},
	}
	if diff := cmp.Diff(want, stats, approxOpt); diff != "" {
		t.Fatalf("ProviderStats mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeSeriesTrimsTrailingEmptyPoints(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-03T00:00:00", "a/x", 0.9),
		record("m", "2024-01-01T00:00:00", "a/x", nil, "b/x", nil),
		record("m", "2024-01-02T00:00:00", "b/x", nil),
		record("m", "2024-01-04T00:00:00", "a/x", nil),
		record("m", "2024-01-05T00:00:00", "c/x", nil),
		record("n", "2024-01-06T00:00:00", "a/x", 0.5),
	}
	series := TimeSeries(records, "m", audit.ExactMatchRate)

	want := Series{
		Model:  "m",
		Active: []string{"a/x"},
		Points: []Point{
			{Timestamp: "2024-01-01T00:00:00", Values: map[string]float64{}},
			{Timestamp: "2024-01-02T00:00:00", Values: map[string]float64{}},
			{Timestamp: "2024-01-03T00:00:00", Values: map[string]float64{"a/x": 0.9}},
		},
	}
	if diff := cmp.Diff(want, series); diff != "" {
		t.Fatalf("TimeSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeSeriesWithoutActiveEndpoints(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-01T00:00:00", "a/x", nil),
		record("m", "2024-01-02T00:00:00", "a/x", nil),
	}
	series := TimeSeries(records, "m", audit.ExactMatchRate)
	if len(series.Active) != 0 || len(series.Points) != 2 {
		t.Fatalf("expected untrimmed series without active endpoints, got %+v", series)
	}
	if got := TimeSeries(records, "missing", audit.ExactMatchRate); len(got.Points) != 0 {
		t.Fatalf("expected empty series for unknown model, got %+v", got)
	}
}

func TestViewsDoNotMutateInput(t *testing.T) {
	records := []audit.Record{
		record("m", "2024-01-02T00:00:00", "a/x", 0.8),
		record("m", "2024-01-01T00:00:00", "a/x", 0.9),
	}
	_ = TimeSeries(records, "m", audit.ExactMatchRate)
	_ = ProviderStats(records, "m", audit.ExactMatchRate)
	if records[0].Timestamp != "2024-01-02T00:00:00" {
		t.Fatal("expected input order to be preserved")
	}
}
