package audit

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		timestamp string
		ok        bool
	}{
		{"modelA_audit_results_20240115_093000.json", "modelA", "2024-01-15T09:30:00", true},
		{"org_model-name_audit_results_20251231_235959.json", "org/model-name", "2025-12-31T23:59:59", true},
		{"modelA_audit_results_2024011_093000.json", "", "", false},
		{"modelA_audit_results_20240115_093000.json.bak", "", "", false},
		{"manifest.json", "", "", false},
		{"_audit_results_20240115_093000.json", "", "", false},
		{"../x_audit_results_20240101_000000.json", "", "", false},
		{"nested/x_audit_results_20240101_000000.json", "", "", false},
		{`..\x_audit_results_20240101_000000.json`, "", "", false},
	}
	for _, tt := range tests {
		model, ts, ok := ParseFilename(tt.name)
		if ok != tt.ok || model != tt.model || ts != tt.timestamp {
			t.Fatalf("ParseFilename(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.name, model, ts, ok, tt.model, tt.timestamp, tt.ok)
		}
		if MatchesPattern(tt.name) != tt.ok {
			t.Fatalf("MatchesPattern(%q) = %v, want %v", tt.name, !tt.ok, tt.ok)
		}
	}
}

func TestParseRecordRoundTrip(t *testing.T) {
	body := []byte(`{"model":"org/modelA","providers":{"provX/fp8":{"exact_match_rate":0.97,"avg_prob":0.9,"total_tokens":1200.0,"n_sequences":10}}}`)
	rec, err := ParseRecord("modelA_audit_results_20240115_093000.json", body)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if rec.Timestamp != "2024-01-15T09:30:00" {
		t.Fatalf("timestamp = %q", rec.Timestamp)
	}
	if rec.Model != "org/modelA" {
		t.Fatalf("model = %q", rec.Model)
	}
	metric, ok := rec.Providers["provX/fp8"]
	if !ok {
		t.Fatalf("expected provX/fp8 in providers, got %v", rec.Providers)
	}
	if metric.ExactMatchRate == nil || *metric.ExactMatchRate != 0.97 {
		t.Fatalf("exact_match_rate = %v", metric.ExactMatchRate)
	}
	if metric.TotalTokens == nil || *metric.TotalTokens != 1200 {
		t.Fatalf("total_tokens = %v", metric.TotalTokens)
	}
	if metric.AvgMargin != nil {
		t.Fatalf("expected missing avg_margin to stay nil, got %v", *metric.AvgMargin)
	}
}

func TestParseRecordModelFromFilename(t *testing.T) {
	for _, body := range []string{
		`{"providers":{}}`,
		`{"model":null,"providers":{}}`,
		`{"model":"  ","providers":{}}`,
	} {
		rec, err := ParseRecord("org_modelB_audit_results_20240115_093000.json", []byte(body))
		if err != nil {
			t.Fatalf("ParseRecord(%s) error: %v", body, err)
		}
		if rec.Model != "org/modelB" {
			t.Fatalf("ParseRecord(%s) model = %q, want org/modelB", body, rec.Model)
		}
	}
}

func TestParseRecordMissingProviders(t *testing.T) {
	rec, err := ParseRecord("m_audit_results_20240115_093000.json", []byte(`{"model":"m"}`))
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if len(rec.Providers) != 0 || len(rec.EndpointNames()) != 0 {
		t.Fatalf("expected no providers, got %v", rec.Providers)
	}
}

func TestParseRecordNonFinite(t *testing.T) {
	body := []byte(`{"model":"m","providers":{"a/x":{"exact_match_rate":NaN},"b/y":{"exact_match_rate":-Infinity},"c/z":{"exact_match_rate":null},"d/w":{"exact_match_rate":0.5}}}`)
	rec, err := ParseRecord("m_audit_results_20240115_093000.json", body)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	for _, name := range []string{"a/x", "b/y", "c/z"} {
		if v := rec.Providers[name].ExactMatchRate; v != nil {
			t.Fatalf("%s: expected nil score, got %v", name, *v)
		}
	}
	if v := ExactMatchRate.Value(rec.Providers["d/w"]); v == nil || *v != 0.5 {
		t.Fatalf("d/w: expected 0.5, got %v", v)
	}
}

func TestParseRecordKeepsFileWithMistypedValues(t *testing.T) {
	body := []byte(`{"model":"m","providers":{"a/x":{"exact_match_rate":"n/a","avg_prob":true,"n_sequences":"10"},"b/y":null,"c/z":{"exact_match_rate":0.8,"avg_margin":{"v":1},"total_tokens":[1]}}}`)
	rec, err := ParseRecord("m_audit_results_20240115_093000.json", body)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	if diff := cmp.Diff([]string{"a/x", "c/z"}, rec.EndpointNames()); diff != "" {
		t.Fatalf("endpoint mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ProviderMetric{}, rec.Providers["a/x"]); diff != "" {
		t.Fatalf("expected every mistyped field to be missing (-want +got):\n%s", diff)
	}
	c := rec.Providers["c/z"]
	if v := ExactMatchRate.Value(c); v == nil || *v != 0.8 {
		t.Fatalf("c/z: expected 0.8, got %v", v)
	}
	if c.AvgMargin != nil || c.TotalTokens != nil {
		t.Fatalf("c/z: expected mistyped fields to be nil, got %+v", c)
	}
}

func TestParseRecordPreservesEndpointOrder(t *testing.T) {
	body := []byte(`{"providers":{"zeta/fp8":{},"alpha/bf16":{},"mid/fp8":{},"alpha/bf16":{"exact_match_rate":0.9}}}`)
	rec, err := ParseRecord("m_audit_results_20240115_093000.json", body)
	if err != nil {
		t.Fatalf("ParseRecord error: %v", err)
	}
	want := []string{"zeta/fp8", "alpha/bf16", "mid/fp8"}
	if diff := cmp.Diff(want, rec.EndpointNames()); diff != "" {
		t.Fatalf("endpoint order mismatch (-want +got):\n%s", diff)
	}
	if v := rec.Providers["alpha/bf16"].ExactMatchRate; v == nil || *v != 0.9 {
		t.Fatalf("expected the last duplicate value to win, got %v", v)
	}
}

func TestParseRecordRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":          `{"providers":`,
		"model not string":  `{"model":42,"providers":{}}`,
		"providers array":   `{"providers":[]}`,
		"metric not object": `{"providers":{"a/b":0.9}}`,
	}
	for name, body := range tests {
		_, err := ParseRecord("m_audit_results_20240115_093000.json", []byte(body))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", name, err)
		}
	}

	_, err := ParseRecord("notes.json", []byte(`{}`))
	if !errors.Is(err, ErrInvalidFilename) {
		t.Fatalf("expected ErrInvalidFilename, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	in := `{"a":NaN,"b":[Infinity,-Infinity],"s":"NaN and \"Infinity\"","c":1}`
	want := `{"a":null,"b":[null,null],"s":"NaN and \"Infinity\"","c":1}`
	if got := string(Sanitize([]byte(in))); got != want {
		t.Fatalf("Sanitize() = %s, want %s", got, want)
	}
	plain := []byte(`{"a":1}`)
	if got := Sanitize(plain); &got[0] != &plain[0] {
		t.Fatal("expected Sanitize to return clean input unchanged")
	}
}

func TestMetricValue(t *testing.T) {
	pm := ProviderMetric{ExactMatchRate: Float(0.9), AvgProb: Float(0.8), AvgMargin: Float(3)}
	if v := ExactMatchRate.Value(pm); v == nil || *v != 0.9 {
		t.Fatalf("ExactMatchRate = %v", v)
	}
	if v := AvgMargin.Value(pm); v == nil || *v != 3 {
		t.Fatalf("AvgMargin = %v", v)
	}
	if v := AvgGumbelRank.Value(pm); v != nil {
		t.Fatalf("expected nil for missing metric, got %v", *v)
	}
	if m, ok := ParseMetric(""); !ok || m != ExactMatchRate {
		t.Fatalf("ParseMetric(\"\") = %q, %v", m, ok)
	}
	if _, ok := ParseMetric("latency"); ok {
		t.Fatal("expected unknown metric to be rejected")
	}
}

func TestSampleRecords(t *testing.T) {
	records := SampleRecords()
	if len(records) == 0 {
		t.Fatal("expected built-in sample records")
	}
	for _, rec := range records {
		if rec.Model == "" || len(rec.Timestamp) != len("2006-01-02T15:04:05") {
			t.Fatalf("malformed sample record: %+v", rec)
		}
		if !strings.Contains(rec.Timestamp, "T") {
			t.Fatalf("unexpected timestamp %q", rec.Timestamp)
		}
		if len(rec.EndpointNames()) != len(rec.Providers) {
			t.Fatalf("endpoint order out of sync for %s %s", rec.Model, rec.Timestamp)
		}
	}
	records[0] = Record{}
	if SampleRecords()[0].Model == "" {
		t.Fatal("expected SampleRecords to return an independent slice")
	}
}
