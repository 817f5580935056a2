package report

import (
	"time"

	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/mwiater/difr/internal/loader"
)

// DefaultTitle is the dashboard page title.
const DefaultTitle = "DiFR Leaderboard"

// Options configures NewDashboardView.
type Options struct {
	Title    string
	BasePath string
	// TopN is the number of leaderboard rows visible before "show all".
	TopN        int
	Metric      audit.Metric
	GeneratedAt time.Time
}

// DashboardView holds every derived view of one dataset. It is computed once
// and embedded in the page; switching models in the browser reads from it.
type DashboardView struct {
	Title        string            `json:"title"`
	BasePath     string            `json:"basePath"`
	TopN         int               `json:"topN"`
	Metric       audit.Metric      `json:"metric"`
	Source       loader.Source     `json:"source"`
	GeneratedAt  string            `json:"generatedAt"`
	Leaderboard  []leaderboard.Row `json:"leaderboard"`
	DefaultModel string            `json:"defaultModel"`
	Models       []ModelView       `json:"models"`
}

// ModelView is the per-model slice of a DashboardView.
type ModelView struct {
	Model  string             `json:"model"`
	Series leaderboard.Series `json:"series"`
	Stats  []leaderboard.Stat `json:"stats"`
}

// NewDashboardView derives the leaderboard and every model's series and stats
// from ds.
func NewDashboardView(ds loader.Dataset, opts Options) DashboardView {
	metric := opts.Metric
	if metric == "" {
		metric = audit.ExactMatchRate
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = leaderboard.DefaultTopN
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	view := DashboardView{
		Title:       title,
		BasePath:    opts.BasePath,
		TopN:        topN,
		Metric:      metric,
		Source:      ds.Source,
		GeneratedAt: generated.UTC().Format(time.RFC3339),
		Leaderboard: leaderboard.Overall(ds.Records, metric),
		Models:      []ModelView{},
	}
	for _, model := range leaderboard.Models(ds.Records) {
		view.Models = append(view.Models, ModelView{
			Model:  model,
			Series: leaderboard.TimeSeries(ds.Records, model, metric),
			Stats:  leaderboard.ProviderStats(ds.Records, model, metric),
		})
	}
	if len(view.Models) > 0 {
		view.DefaultModel = view.Models[0].Model
	}
	return view
}

// Model returns the view for model.
func (v DashboardView) Model(model string) (ModelView, bool) {
	for _, m := range v.Models {
		if m.Model == model {
			return m, true
		}
	}
	return ModelView{}, false
}

// HasMore reports whether the leaderboard has rows hidden by default.
func (v DashboardView) HasMore() bool {
	return len(v.Leaderboard) > v.TopN
}
