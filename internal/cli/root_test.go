// internal/cli/root_test.go
package difr

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/mwiater/difr/internal/report"
	"github.com/spf13/afero"
)

var fixtureFiles = map[string]string{
	"manifest.json": `{"files":[
		"m1_audit_results_20240101_000000.json",
		"m1_audit_results_20240102_000000.json",
		"m2_audit_results_20240101_000000.json",
		"README.md"
	]}`,
	"m1_audit_results_20240101_000000.json": `{"model":"org/m1","providers":{"together/fp8":{"exact_match_rate":0.97},"groq/int8":{"exact_match_rate":0.85}}}`,
	"m1_audit_results_20240102_000000.json": `{"model":"org/m1","providers":{"together/fp8":{"exact_match_rate":0.95},"groq/int8":{"exact_match_rate":NaN}}}`,
	"m2_audit_results_20240101_000000.json": `{"providers":{"together/fp8":{"exact_match_rate":0.99}}}`,
}

// writeFixture creates a local source directory holding data/.
func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range fixtureFiles {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

// run executes a fresh command tree with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithFs(t, afero.NewOsFs(), args...)
}

// runWithFs executes a fresh command tree over fs.
func runWithFs(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	b := new(bytes.Buffer)
	root := newRootCmdWithFs(fs)
	root.SetOut(b)
	root.SetErr(b)
	args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.json")}, args...)
	root.SetArgs(args)
	err := root.Execute()
	return b.String(), err
}

// TestRootCmd verifies running the root command with an invalid subcommand reports an error.
func TestRootCmd(t *testing.T) {
	out, err := run(t, "nonexistent")
	if err == nil {
		t.Error("Expected an error for a nonexistent command, but got none")
	}
	expected := "unknown command \"nonexistent\" for \"difr\""
	if !strings.Contains(out, expected) {
		t.Errorf("Expected output to contain '%s', but got '%s'", expected, out)
	}
}

func TestLeaderboardCommand(t *testing.T) {
	source := writeFixture(t)

	out, err := run(t, "leaderboard", "--source", source)
	if err != nil {
		t.Fatalf("leaderboard error: %v", err)
	}
	for _, want := range []string{"Avg Exact Match Rate", "#1", "together", "97.00%", "groq", "85.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "sample data") {
		t.Errorf("Expected live data, got fallback notice:\n%s", out)
	}

	out, err = run(t, "leaderboard", "--source", source, "--json")
	if err != nil {
		t.Fatalf("leaderboard --json error: %v", err)
	}
	var rows []leaderboard.Row
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode JSON output: %v\n%s", err, out)
	}
	if len(rows) != 2 || rows[0].Provider != "together" || rows[0].ModelCount != 2 || rows[0].DataPoints != 3 {
		t.Errorf("Unexpected rows: %+v", rows)
	}
	if rows[1].Provider != "groq" || rows[1].DataPoints != 1 {
		t.Errorf("Expected NaN to be skipped for groq, got %+v", rows[1])
	}
}

func TestLeaderboardRejectsUnknownMetric(t *testing.T) {
	_, err := run(t, "leaderboard", "--source", writeFixture(t), "--metric", "latency")
	if err == nil || !strings.Contains(err.Error(), "unknown metric") {
		t.Fatalf("Expected unknown metric error, got %v", err)
	}
}

func TestModelCommand(t *testing.T) {
	source := writeFixture(t)

	out, err := run(t, "model", "--source", source)
	if err != nil {
		t.Fatalf("model error: %v", err)
	}
	for _, want := range []string{"Provider Performance Over Time - org/m1", "Provider Comparison - org/m1", "together/fp8", "groq/int8", "-2.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	out, err = run(t, "model", "m2", "--source", source, "--json")
	if err != nil {
		t.Fatalf("model m2 error: %v", err)
	}
	var view report.ModelView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode JSON output: %v\n%s", err, out)
	}
	if view.Model != "m2" || len(view.Stats) != 1 || len(view.Series.Points) != 1 {
		t.Errorf("Unexpected model view: %+v", view)
	}

	out, err = run(t, "model", "--list", "--source", source)
	if err != nil {
		t.Fatalf("model --list error: %v", err)
	}
	if out != "org/m1\nm2\n" {
		t.Errorf("Unexpected model list %q", out)
	}

	if _, err := run(t, "model", "nope", "--source", source); err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Errorf("Expected unknown model error, got %v", err)
	}
}

func TestBuildCommand(t *testing.T) {
	source := writeFixture(t)
	outDir := filepath.Join(t.TempDir(), "dist")

	out, err := run(t, "build", "--source", source, "--base-path", "board/", "--out", outDir, "--json", "--copy-data")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	for _, want := range []string{"wrote " + filepath.Join(outDir, "index.html"), "2 providers, 2 models", "copied 3 audit files"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	html, err := os.ReadFile(filepath.Join(outDir, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if !strings.Contains(string(html), `href="/board/icon.svg"`) {
		t.Error("Expected assets under the base path")
	}

	data, err := os.ReadFile(filepath.Join(outDir, "views.json"))
	if err != nil {
		t.Fatalf("read views.json: %v", err)
	}
	var view report.DashboardView
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("decode views.json: %v", err)
	}
	if view.DefaultModel != "org/m1" || view.BasePath != "/board" || view.Source != "live" {
		t.Errorf("Unexpected view: %+v", view)
	}

	if _, err := os.Stat(filepath.Join(outDir, "data", "manifest.json")); err != nil {
		t.Errorf("Expected manifest to be copied: %v", err)
	}
}

func TestBuildCommandInMemory(t *testing.T) {
	fs := afero.NewMemMapFs()
	for name, body := range fixtureFiles {
		if err := afero.WriteFile(fs, "/src/data/"+name, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, err := runWithFs(t, fs, "build", "--source", "/src", "--out", "/dist", "--json", "--copy-data")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if !strings.Contains(out, "2 providers, 2 models") {
		t.Errorf("Expected live data in output:\n%s", out)
	}
	for _, name := range []string{
		"/dist/index.html",
		"/dist/views.json",
		"/dist/data/manifest.json",
		"/dist/data/m2_audit_results_20240101_000000.json",
	} {
		ok, err := afero.Exists(fs, name)
		if err != nil || !ok {
			t.Errorf("Expected %s in the export (err %v)", name, err)
		}
	}
}

func TestBuildFallsBackToSampleData(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "dist")

	out, err := run(t, "build", "--source", t.TempDir(), "--out", outDir)
	if err != nil {
		t.Fatalf("build should not fail on fallback: %v", err)
	}
	if !strings.Contains(out, "rendering sample data") {
		t.Errorf("Expected fallback notice, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "index.html")); err != nil {
		t.Errorf("Expected index.html: %v", err)
	}
}

func TestManifestCommand(t *testing.T) {
	source := writeFixture(t)
	if err := os.Remove(filepath.Join(source, "data", "manifest.json")); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "manifest", "--source", source)
	if err != nil {
		t.Fatalf("manifest error: %v", err)
	}
	if !strings.Contains(out, "(3 files)") {
		t.Errorf("Unexpected output %q", out)
	}
	body, err := os.ReadFile(filepath.Join(source, "data", "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(body), "m2_audit_results_20240101_000000.json") {
		t.Errorf("Unexpected manifest %s", body)
	}
}

func TestConfigCommandMergesFileEnvAndFlags(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(`{"source":"https://example.org","basePath":"board","concurrency":3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DIFR_TOP_N", "5")

	b := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(b)
	root.SetErr(b)
	root.SetArgs([]string{"config", "--config", configPath, "--concurrency", "6"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config error: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"Config file: " + configPath,
		"https://example.org",
		`"/board"`,
		"Concurrency:     6",
		"Top N:           5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
