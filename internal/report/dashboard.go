// internal/report/dashboard.go
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"path"
)

type dashboardPage struct {
	DashboardView
	MetricLabel string
	PayloadJSON template.JS
}

// GenerateDashboard renders a standalone HTML dashboard for view. The
// leaderboard and provider cards are rendered server-side; the chart and the
// model/show-all controls run in the browser from the embedded view.
func GenerateDashboard(view DashboardView) (string, error) {
	payload, err := json.Marshal(view)
	if err != nil {
		return "", err
	}

	page := dashboardPage{
		DashboardView: view,
		MetricLabel:   MetricLabel(view.Metric),
		PayloadJSON:   template.JS(payload),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AssetURL joins base and name into an absolute URL path.
func AssetURL(base, name string) string {
	return path.Join("/", base, name)
}

var dashboardFuncs = template.FuncMap{
	"percent": FormatPercent,
	"trend":   FormatTrend,
	"tier":    func(score float64) string { return string(Tier(score)) },
	"rank":    func(i int) int { return i + 1 },
	"asset":   AssetURL,
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(dashboardFuncs).Parse(dashboardTemplateHTML))

const dashboardTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="icon" href="{{ asset .BasePath "icon.svg" }}" type="image/svg+xml">
  <link rel="apple-touch-icon" href="{{ asset .BasePath "apple-icon.png" }}">
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link href="https://fonts.googleapis.com/css2?family=Space+Grotesk:wght@500;700&family=Work+Sans:wght@400;600&display=swap" rel="stylesheet">
  <style>
    :root {
      --text: #0F172A;
      --muted: #64748B;
      --border: #E2E8F0;
      --header: #F0F0F0;
      --background: #FFFFFF;
      --light: #F8FAFC;
      --accent: #FFB3A8;
    }
    body {
      background-color: var(--light);
      color: var(--text);
      font-family: "Work Sans", system-ui, sans-serif;
    }
    h1, h2, .card-title {
      font-family: "Space Grotesk", system-ui, sans-serif;
    }
    .site-header {
      position: sticky;
      top: 0;
      z-index: 10;
      background-color: rgba(255, 255, 255, 0.85);
      backdrop-filter: blur(6px);
      border-bottom: 1px solid var(--border);
    }
    .site-header img { height: 48px; width: auto; }
    .card {
      border: 1px solid var(--border);
      background-color: var(--background);
      border-radius: 12px;
    }
    .card-subtitle { color: var(--muted); }
    .explainer {
      border: 1px solid var(--border);
      border-radius: 12px;
      background-color: var(--background);
      padding: 1.25rem;
    }
    .explainer p { color: var(--muted); font-size: 0.9rem; }
    .leaderboard thead th { background-color: var(--header); }
    .leaderboard .provider { font-family: ui-monospace, monospace; font-size: 0.9rem; }
    .score { font-weight: 700; font-size: 1.1rem; }
    .tier-excellent { color: #55C89F; }
    .tier-good { color: #A6D8C0; }
    .tier-fair { color: #FFB3A8; }
    .tier-low { color: #FF563F; }
    .tier-muted { color: var(--muted); }
    .model-count {
      display: inline-flex;
      align-items: center;
      justify-content: center;
      min-width: 1.75rem;
      height: 1.75rem;
      border: 1px solid var(--border);
      border-radius: 999px;
      background-color: var(--header);
    }
    .btn-toggle:hover { background-color: var(--accent); }
    .chart-canvas {
      position: relative;
      height: 400px;
    }
    .stat-card:hover { background-color: var(--light); }
    .stat-card .endpoint { font-family: ui-monospace, monospace; font-size: 1rem; }
    .stat-label { color: var(--muted); font-size: 0.75rem; margin-bottom: 0.25rem; }
    .trend-up { color: #55C89F; }
    .trend-down { color: #FF563F; }
    .runs-badge { background-color: var(--header); color: var(--text); }
  </style>
</head>
<body>
  <header class="site-header">
    <div class="container py-3 d-flex align-items-center justify-content-between gap-4">
      <div>
        <h1 class="h3 mb-0">Inference Provider Leaderboard</h1>
        <p class="text-muted small mb-0">Inference reliability metrics</p>
      </div>
      <img src="{{ asset .BasePath "icon_Light_Primary.svg" }}" alt="Company logo" onerror="this.style.display='none'">
    </div>
  </header>

  <main class="container py-4">
    <section class="explainer mb-4">
      <h2 class="h5">How to read this leaderboard</h2>
      <p class="mt-2 mb-0">
        We audit providers by comparing their outputs against trusted reference implementations of models.
        The exact match rate is the share of tokens that match the reference; higher means the provider is more
        likely serving models correctly. We compare tens of thousands of tokens per run. This means that low exact
        match rates imply that a model is behaving differently than expected.
      </p>
      <p class="mt-2 mb-0">
        Exact match rates above 95% are typical; sustained drops can indicate model substitution, heavy
        quantization, or that we are incorrectly tokenizing the provider's response.
      </p>
    </section>

    <div class="card mb-4">
      <div class="card-body">
        <h2 class="card-title h4">Overall Provider Rankings</h2>
        <p class="card-subtitle mb-3">The rate that a token sampled from a provider matches our reference implementation averaged across all models and timesteps</p>
        <div class="table-responsive border rounded">
          <table class="table leaderboard align-middle mb-0" id="leaderboardTable">
            <thead>
              <tr>
                <th style="width: 4rem">Rank</th>
                <th>Provider</th>
                <th class="text-end">Avg {{ .MetricLabel }}</th>
                <th class="text-end">Models</th>
                <th class="text-end">Data Points</th>
              </tr>
            </thead>
            <tbody>
            {{- range $i, $row := .Leaderboard }}
              <tr class="leaderboard-row{{ if ge $i $.TopN }} extra-row d-none{{ end }}">
                <td class="fw-semibold">#{{ rank $i }}</td>
                <td class="provider">{{ $row.Provider }}</td>
                <td class="text-end"><span class="score tier-{{ tier $row.AvgScore }}">{{ percent $row.AvgScore }}</span></td>
                <td class="text-end"><span class="model-count">{{ $row.ModelCount }}</span></td>
                <td class="text-end text-muted">{{ $row.DataPoints }}</td>
              </tr>
            {{- else }}
              <tr><td colspan="5" class="text-center text-muted py-4">No provider has valid results yet</td></tr>
            {{- end }}
            </tbody>
          </table>
        </div>
        {{- if .HasMore }}
        <div class="d-flex justify-content-center mt-3">
          <button type="button" class="btn btn-outline-secondary btn-toggle" id="toggleProviders" data-top="{{ .TopN }}">Show all providers</button>
        </div>
        {{- end }}
      </div>
    </div>

    <div class="card mb-4">
      <div class="card-body">
        <div class="d-flex flex-column flex-sm-row justify-content-between align-items-sm-center gap-3 mb-3">
          <div>
            <h2 class="card-title h4 mb-1">Provider Performance Over Time</h2>
            <p class="card-subtitle mb-0">{{ .MetricLabel }} over time for selected model</p>
          </div>
          <select class="form-select w-auto" id="modelSelect" aria-label="Select a model">
          {{- range .Models }}
            <option value="{{ .Model }}"{{ if eq .Model $.DefaultModel }} selected{{ end }}>{{ .Model }}</option>
          {{- end }}
          </select>
        </div>
        <div class="chart-canvas" id="chartContainer">
          <canvas id="timeSeriesChart"></canvas>
        </div>
        <div class="row g-2 align-items-center mt-2" id="chartRange">
          <div class="col"><input type="range" class="form-range" id="rangeStart" min="0" max="0" value="0" aria-label="First run shown"></div>
          <div class="col"><input type="range" class="form-range" id="rangeEnd" min="0" max="0" value="0" aria-label="Last run shown"></div>
          <div class="col-auto small text-muted" id="rangeLabel"></div>
        </div>
        <div class="text-center text-muted py-5 d-none" id="chartEmpty">Select a model to view timeline</div>
      </div>
    </div>

    {{- range .Models }}
    <div class="card mb-4 model-panel" data-model="{{ .Model }}"{{ if ne .Model $.DefaultModel }} hidden{{ end }}>
      <div class="card-body">
        <h2 class="card-title h4">Provider Comparison - {{ .Model }}</h2>
        <p class="card-subtitle mb-3">Detailed statistics for each provider</p>
        <div class="row g-3">
        {{- range $i, $stat := .Stats }}
          <div class="col-12 col-md-6 col-lg-4">
            <div class="card stat-card h-100">
              <div class="card-body">
                <div class="d-flex justify-content-between align-items-start">
                  <div>
                    <div class="endpoint fw-semibold">{{ $stat.Provider }}</div>
                    <div class="d-flex gap-2 mt-1">
                      <span class="badge {{ if eq $i 0 }}bg-dark{{ else }}bg-secondary{{ end }}">#{{ rank $i }}</span>
                      <span class="badge runs-badge border">{{ $stat.DataPoints }} runs</span>
                    </div>
                  </div>
                  {{- if gt $stat.Trend 0.0 }}
                  <span class="trend-up fs-5" title="Trending up">&#9650;</span>
                  {{- else if lt $stat.Trend 0.0 }}
                  <span class="trend-down fs-5" title="Trending down">&#9660;</span>
                  {{- end }}
                </div>
                <div class="mt-3">
                  <div class="stat-label">Average Score</div>
                  <div class="fs-3 fw-bold tier-{{ tier $stat.AvgScore }}">{{ percent $stat.AvgScore }}</div>
                </div>
                <div class="row pt-3 mt-3 border-top">
                  <div class="col-6">
                    <div class="stat-label">Min</div>
                    <div class="fw-semibold">{{ percent $stat.MinScore }}</div>
                  </div>
                  <div class="col-6">
                    <div class="stat-label">Max</div>
                    <div class="fw-semibold">{{ percent $stat.MaxScore }}</div>
                  </div>
                </div>
                <div class="pt-2 mt-2 border-top">
                  <div class="stat-label">Latest Score</div>
                  <div class="d-flex align-items-baseline gap-2">
                    <span class="fs-5 fw-bold">{{ percent $stat.LatestScore }}</span>
                    {{- if ne $stat.Trend 0.0 }}
                    <span class="small fw-medium">{{ trend $stat.Trend }}</span>
                    {{- end }}
                  </div>
                </div>
              </div>
            </div>
          </div>
        {{- end }}
        </div>
      </div>
    </div>
    {{- end }}

    <footer class="text-center text-muted small py-3">Generated {{ .GeneratedAt }}</footer>
  </main>

  <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    window.dashboard = {{ .PayloadJSON }};
  </script>
  <script>
    (function () {
      const dashboard = window.dashboard || {};
      const palette = ["#FF563F", "#FFB3A8", "#6E73FF", "#BEC9FF", "#606060", "#D6D5D5", "#55C89F", "#A6D8C0", "#FFD24D", "#FFED9E"];
      const state = { selectedModel: dashboard.defaultModel || "", showAll: false, chart: null };

      function formatPercent(value, decimals) {
        if (typeof value !== "number" || !Number.isFinite(value)) {
          return "-";
        }
        return (value * 100).toFixed(decimals) + "%";
      }

      function formatTime(timestamp) {
        const date = new Date(timestamp);
        if (Number.isNaN(date.getTime())) {
          return timestamp;
        }
        return date.toLocaleString("en-US", { month: "short", day: "numeric", hour: "2-digit", minute: "2-digit" });
      }

      function modelView(name) {
        return (dashboard.models || []).find(function (m) { return m.model === name; });
      }

      function renderChart() {
        const view = modelView(state.selectedModel);
        const container = document.getElementById("chartContainer");
        const empty = document.getElementById("chartEmpty");
        const range = document.getElementById("chartRange");
        if (!view || !view.series || view.series.points.length === 0) {
          container.classList.add("d-none");
          range.classList.add("d-none");
          empty.classList.remove("d-none");
          return;
        }
        container.classList.remove("d-none");
        range.classList.remove("d-none");
        empty.classList.add("d-none");

        const points = view.series.points;
        resetRange(points.length);
        const datasets = (view.series.active || []).map(function (endpoint, index) {
          const color = palette[index % palette.length];
          return {
            label: endpoint,
            data: points.map(function (p) {
              const v = p.values ? p.values[endpoint] : undefined;
              return typeof v === "number" ? v : null;
            }),
            borderColor: color,
            backgroundColor: color,
            borderWidth: 3,
            pointRadius: 6,
            pointHoverRadius: 8,
            tension: 0.3,
            spanGaps: true,
          };
        });

        if (state.chart) {
          state.chart.destroy();
        }
        state.chart = new Chart(document.getElementById("timeSeriesChart"), {
          type: "line",
          data: { labels: points.map(function (p) { return formatTime(p.timestamp); }), datasets: datasets },
          options: {
            responsive: true,
            maintainAspectRatio: false,
            animation: false,
            interaction: { mode: "index", intersect: false },
            scales: {
              y: {
                min: 0.7,
                max: 1,
                ticks: { callback: function (value) { return formatPercent(value, 0); } },
              },
            },
            plugins: {
              legend: { position: "bottom", labels: { usePointStyle: true, pointStyle: "line" } },
              tooltip: {
                callbacks: {
                  label: function (ctx) { return ctx.dataset.label + ": " + formatPercent(ctx.parsed.y, 2); },
                },
              },
            },
          },
        });
      }

      function resetRange(count) {
        ["rangeStart", "rangeEnd"].forEach(function (id) {
          const input = document.getElementById(id);
          input.max = String(Math.max(count - 1, 0));
        });
        document.getElementById("rangeStart").value = "0";
        document.getElementById("rangeEnd").value = String(Math.max(count - 1, 0));
        updateRangeLabel();
      }

      function updateRangeLabel() {
        const start = Number(document.getElementById("rangeStart").value);
        const end = Number(document.getElementById("rangeEnd").value);
        document.getElementById("rangeLabel").textContent = "Runs " + (start + 1) + "-" + (end + 1);
      }

      function applyRange(changed) {
        const startInput = document.getElementById("rangeStart");
        const endInput = document.getElementById("rangeEnd");
        let start = Number(startInput.value);
        let end = Number(endInput.value);
        if (start > end) {
          if (changed === startInput) {
            end = start;
            endInput.value = String(end);
          } else {
            start = end;
            startInput.value = String(start);
          }
        }
        updateRangeLabel();
        if (state.chart) {
          state.chart.options.scales.x = { min: start, max: end };
          state.chart.update();
        }
      }

      function renderPanels() {
        document.querySelectorAll(".model-panel").forEach(function (panel) {
          panel.hidden = panel.dataset.model !== state.selectedModel;
        });
      }

      function renderLeaderboard() {
        document.querySelectorAll("#leaderboardTable .extra-row").forEach(function (row) {
          row.classList.toggle("d-none", !state.showAll);
        });
        ["rangeStart", "rangeEnd"].forEach(function (id) {
          const input = document.getElementById(id);
          input.addEventListener("input", function () { applyRange(input); });
        });
        const toggle = document.getElementById("toggleProviders");
        if (toggle) {
          toggle.textContent = state.showAll ? "Show top " + toggle.dataset.top + " providers" : "Show all providers";
        }
      }

      document.addEventListener("DOMContentLoaded", function () {
        const select = document.getElementById("modelSelect");
        if (select) {
          select.addEventListener("change", function () {
            state.selectedModel = select.value;
            renderPanels();
            renderChart();
          });
        }
        const toggle = document.getElementById("toggleProviders");
        if (toggle) {
          toggle.addEventListener("click", function () {
            state.showAll = !state.showAll;
            renderLeaderboard();
          });
        }
        renderPanels();
        renderChart();
      });
    })();
  </script>
</body>
</html>
`
