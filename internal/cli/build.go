// internal/cli/build.go
package difr

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/mwiater/difr/internal/loader"
	"github.com/mwiater/difr/internal/logging"
	"github.com/mwiater/difr/internal/report"
	"github.com/mwiater/difr/internal/util"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	outDir   string
	json     bool
	copyData bool
}

// newBuildCmd implements 'build', which writes the static dashboard export.
func newBuildCmd(a *app) *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static leaderboard dashboard",
		Long: `Load the manifest and audit files, derive every view, and write a standalone
index.html into the output directory. When loading fails the built-in sample
dataset is rendered instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()

			if opts.outDir == "" {
				opts.outDir = a.cfg.OutputPath()
			}
			ds := a.loadDataset(ctx)
			return a.runBuild(cmd.OutOrStdout(), ds, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory (default from config, dist)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "also write the derived views to views.json")
	cmd.Flags().BoolVar(&opts.copyData, "copy-data", false, "copy data/ from a local source into the export")
	return cmd
}

func (a *app) runBuild(out io.Writer, ds loader.Dataset, opts buildOptions) error {
	success := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	if ds.Source == loader.SourceFallback {
		fmt.Fprintf(out, "%s live data unavailable (%v); rendering sample data\n", warn("!"), ds.Err)
	}

	view := report.NewDashboardView(ds, report.Options{
		Title:       a.cfg.Title,
		BasePath:    a.cfg.NormalizedBasePath(),
		TopN:        a.cfg.LeaderboardTopN(),
		GeneratedAt: time.Now(),
	})
	html, err := report.GenerateDashboard(view)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	indexPath := filepath.Join(opts.outDir, "index.html")
	if err := util.WriteFile(a.fs, indexPath, []byte(html)); err != nil {
		return fmt.Errorf("write %s: %w", indexPath, err)
	}
	fmt.Fprintf(out, "%s wrote %s (%d providers, %d models)\n", success("✓"), indexPath, len(view.Leaderboard), len(view.Models))

	if opts.json {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal views: %w", err)
		}
		viewsPath := filepath.Join(opts.outDir, "views.json")
		if err := util.WriteFile(a.fs, viewsPath, append(data, '\n')); err != nil {
			return fmt.Errorf("write %s: %w", viewsPath, err)
		}
		fmt.Fprintf(out, "%s wrote %s\n", success("✓"), viewsPath)
	}

	if opts.copyData {
		if loader.IsRemote(a.cfg.Source) {
			fmt.Fprintf(out, "%s --copy-data needs a local source; skipped\n", warn("!"))
			return nil
		}
		srcDir := filepath.Join(a.cfg.Source, loader.DataDir)
		dstDir := filepath.Join(opts.outDir, loader.DataDir)
		n, err := loader.CopyData(a.fs, srcDir, a.fs, dstDir)
		if err != nil {
			return fmt.Errorf("copy data: %w", err)
		}
		fmt.Fprintf(out, "%s copied %d audit files to %s\n", success("✓"), n, dstDir)
	}

	logging.LogEvent("dashboard built in %s from %s data (%d records)", opts.outDir, ds.Source, len(ds.Records))
	return nil
}
