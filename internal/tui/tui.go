// internal/tui/tui.go
// Package tui is the interactive terminal dashboard: the leaderboard plus the
// selected model's provider comparison and time series.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/difr/internal/audit"
	"github.com/mwiater/difr/internal/leaderboard"
	"github.com/mwiater/difr/internal/loader"
	"github.com/mwiater/difr/internal/logging"
	"github.com/mwiater/difr/internal/report"
	"github.com/mwiater/difr/internal/util"
	"go.uber.org/zap"
)

// DatasetLoader produces the dataset the dashboard shows.
type DatasetLoader interface {
	LoadDataset(ctx context.Context) loader.Dataset
}

// Options configures the dashboard.
type Options struct {
	Metric audit.Metric
	TopN   int
	Title  string
}

type viewState int

const (
	viewLoading viewState = iota
	viewDashboard
)

const (
	headerHeight = 3
	footerHeight = 2
)

type model struct {
	ctx    context.Context
	loader DatasetLoader
	opts   Options

	state            viewState
	spinner          spinner.Model
	viewport         viewport.Model
	requestStartTime time.Time

	dataset  loader.Dataset
	rows     []leaderboard.Row
	models   []string
	selected int
	showAll  bool

	width  int
	height int
}

type datasetLoadedMsg struct{ dataset loader.Dataset }

type tickMsg time.Time

func initialModel(ctx context.Context, l DatasetLoader, opts Options) *model {
	if opts.Metric == "" {
		opts.Metric = audit.ExactMatchRate
	}
	if opts.TopN <= 0 {
		opts.TopN = leaderboard.DefaultTopN
	}
	if opts.Title == "" {
		opts.Title = report.DefaultTitle
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF563F"))

	return &model{
		ctx:              ctx,
		loader:           l,
		opts:             opts,
		state:            viewLoading,
		spinner:          s,
		viewport:         viewport.New(100, 20),
		requestStartTime: time.Now(),
	}
}

func loadDatasetCmd(ctx context.Context, l DatasetLoader) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ds := l.LoadDataset(ctx)
		logging.L().Debug("tui dataset loaded",
			zap.String("source", string(ds.Source)),
			zap.Int("records", len(ds.Records)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return datasetLoadedMsg{dataset: ds}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the spinner and the dataset load.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDatasetCmd(m.ctx, m.loader), tickCmd())
}

// Update handles key presses, resizes and the dataset arriving.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		if m.state != viewDashboard {
			return m, nil
		}
		switch msg.String() {
		case "right", "]", "l":
			m.selectModel(m.selected + 1)
			return m, nil
		case "left", "[", "h":
			m.selectModel(m.selected - 1)
			return m, nil
		case "a":
			m.showAll = !m.showAll
			m.refreshViewport()
			return m, nil
		case "r":
			m.state = viewLoading
			m.requestStartTime = time.Now()
			return m, tea.Batch(m.spinner.Tick, loadDatasetCmd(m.ctx, m.loader), tickCmd())
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.refreshViewport()
		return m, nil

	case datasetLoadedMsg:
		m.setDataset(msg.dataset)
		return m, nil

	case tickMsg:
		if m.state == viewLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	if m.state == viewLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// setDataset derives the leaderboard and keeps the current model selected
// when it still exists.
func (m *model) setDataset(ds loader.Dataset) {
	previous := m.selectedModel()
	m.dataset = ds
	m.rows = leaderboard.Overall(ds.Records, m.opts.Metric)
	m.models = leaderboard.Models(ds.Records)
	m.selected = 0
	for i, name := range m.models {
		if name == previous {
			m.selected = i
		}
	}
	m.state = viewDashboard
	m.refreshViewport()
}

func (m *model) selectedModel() string {
	if m.selected < 0 || m.selected >= len(m.models) {
		return ""
	}
	return m.models[m.selected]
}

// selectModel wraps around the model list. It never reloads data.
func (m *model) selectModel(i int) {
	if len(m.models) == 0 {
		return
	}
	m.selected = (i + len(m.models)) % len(m.models)
	m.refreshViewport()
	m.viewport.GotoTop()
}

func (m *model) refreshViewport() {
	if m.state != viewDashboard {
		return
	}
	m.viewport.SetContent(m.dashboardContent())
}

func (m *model) dashboardContent() string {
	var b strings.Builder
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6E73FF"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tableOpts := report.TableOptions{Metric: m.opts.Metric, TopN: m.opts.TopN, ShowAll: m.showAll}

	b.WriteString(sectionStyle.Render("Overall Provider Rankings") + "\n")
	b.WriteString(mutedStyle.Render(util.WrapToWidth("The rate that a token sampled from a provider matches our reference implementation averaged across all models and timesteps", max(m.width, 40))) + "\n\n")
	_ = report.RenderLeaderboard(&b, m.rows, tableOpts)

	name := m.selectedModel()
	if name == "" {
		b.WriteString("\n" + mutedStyle.Render("No models loaded.") + "\n")
		return b.String()
	}

	b.WriteString("\n" + sectionStyle.Render("Provider Performance Over Time") + "\n\n")
	_ = report.RenderSeries(&b, leaderboard.TimeSeries(m.dataset.Records, name, m.opts.Metric), tableOpts)
	b.WriteString("\n")
	_ = report.RenderProviderStats(&b, name, leaderboard.ProviderStats(m.dataset.Records, name, m.opts.Metric), tableOpts)
	return b.String()
}

// View renders the loading screen or the dashboard.
func (m *model) View() string {
	if m.state == viewLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Loading audit results... %ss\n", m.spinner.View(), timer)
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

func (m *model) headerView() string {
	titleStyle := lipgloss.NewStyle().Background(lipgloss.Color("#FF563F")).Foreground(lipgloss.Color("230")).Bold(true).Padding(0, 1)
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	warnStyle := lipgloss.NewStyle().Background(lipgloss.Color("#FFD24D")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)

	modelLabel := "Model: none"
	if name := m.selectedModel(); name != "" {
		modelLabel = fmt.Sprintf("Model %d/%d: %s", m.selected+1, len(m.models), util.TruncateRunes(name, 48))
	}
	parts := []string{
		titleStyle.Render(m.opts.Title),
		badgeStyle.Render(modelLabel),
		badgeStyle.Render("Metric: " + report.MetricLabel(m.opts.Metric)),
	}
	if m.dataset.Source == loader.SourceFallback {
		parts = append(parts, warnStyle.Render("Sample data"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n"
}

func (m *model) footerView() string {
	toggle := "a: show all providers"
	if m.showAll {
		toggle = fmt.Sprintf("a: show top %d providers", m.opts.TopN)
	}
	help := fmt.Sprintf(" ←/→: change model • %s • ↑/↓: scroll • r: reload • q: quit", toggle)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(help)
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, l DatasetLoader, opts Options) error {
	m := initialModel(ctx, l, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
