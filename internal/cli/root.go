// internal/cli/root.go
package difr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/difr/internal/appconfig"
	"github.com/mwiater/difr/internal/loader"
	"github.com/mwiater/difr/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// app carries the state shared by one command tree: its viper instance, the
// filesystem every command reads and writes, the --config value, and the
// merged configuration snapshot.
type app struct {
	v       *viper.Viper
	fs      afero.Fs
	cfgFile string
	cfg     appconfig.Config
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"source":            "DIFR_SOURCE",
	"basePath":          "DIFR_BASE_PATH",
	"outputDir":         "DIFR_OUTPUT_DIR",
	"logFile":           "DIFR_LOG_FILE",
	"debug":             "DIFR_DEBUG",
	"timeout":           "DIFR_TIMEOUT",
	"concurrency":       "DIFR_CONCURRENCY",
	"requestsPerSecond": "DIFR_REQUESTS_PER_SECOND",
	"topN":              "DIFR_TOP_N",
	"addr":              "DIFR_ADDR",
	"userAgent":         "DIFR_USER_AGENT",
	"title":             "DIFR_TITLE",
}

// newRootCmd builds the command tree over the OS filesystem.
func newRootCmd() *cobra.Command {
	return newRootCmdWithFs(afero.NewOsFs())
}

// newRootCmdWithFs builds the command tree over fs.
func newRootCmdWithFs(fs afero.Fs) *cobra.Command {
	a := &app{v: viper.New(), fs: fs}
	a.v.SetFs(fs)

	rootCmd := &cobra.Command{
		Use:           "difr",
		Short:         "difr: inference provider audit leaderboard",
		Long:          "Loads audit results comparing inference-provider outputs against reference implementations and ranks providers by exact match rate.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	flags.String("source", "", "data source: an http(s) origin or a local directory containing data/")
	flags.String("base-path", "", "path prefix for assets and data (e.g., /inference-provider-leaderboard)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", "", "also write JSON logs to this file")
	flags.Int("concurrency", 0, "maximum concurrent audit file fetches")
	flags.Int("timeout", 0, "per-request timeout in seconds")
	flags.Float64("rps", 0, "maximum HTTP requests per second (0 = unlimited)")
	flags.String("user-agent", "", "User-Agent header for HTTP fetches")
	flags.Int("top", 0, "leaderboard rows shown before show-all")

	for key, flag := range map[string]string{
		"source":            "source",
		"basePath":          "base-path",
		"debug":             "debug",
		"logFile":           "log-file",
		"concurrency":       "concurrency",
		"timeout":           "timeout",
		"requestsPerSecond": "rps",
		"userAgent":         "user-agent",
		"topN":              "top",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newBuildCmd(a),
		newLeaderboardCmd(a),
		newModelCmd(a),
		newTUICmd(a),
		newServeCmd(a),
		newManifestCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	defer logging.Close()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// loadConfig reads the config file (a missing file is fine), merges flags and
// environment over it, and initializes logging.
func (a *app) loadConfig() error {
	v := a.v
	v.SetDefault("source", "public")
	v.SetDefault("basePath", "")
	v.SetDefault("outputDir", "dist")
	v.SetDefault("timeout", 30)
	v.SetDefault("concurrency", loader.DefaultConcurrency)
	v.SetDefault("topN", 10)
	v.SetDefault("addr", ":8080")
	v.SetDefault("userAgent", "difr/"+appVersion)
	v.SetDefault("title", "")
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	var cfg appconfig.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if err := logging.Init(logging.Options{Path: cfg.LogFile, Debug: cfg.Debug}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// newLoader builds a Loader for the configured source. Local sources are
// treated as the served root, so the base path only applies to HTTP origins.
func (a *app) newLoader() *loader.Loader {
	cfg := a.cfg
	fetcher := loader.NewFetcher(a.fs, cfg.Source, loader.HTTPOptions{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	base := ""
	if loader.IsRemote(cfg.Source) {
		base = cfg.NormalizedBasePath()
	}
	return loader.New(fetcher, base,
		loader.WithConcurrency(cfg.FetchConcurrency()),
		loader.WithLogger(logging.L()),
	)
}

// loadDataset loads the configured dataset, falling back to the sample data.
func (a *app) loadDataset(ctx context.Context) loader.Dataset {
	ds := a.newLoader().LoadDataset(ctx)
	logging.L().Debug("dataset ready",
		zap.String("source", string(ds.Source)),
		zap.Int("records", len(ds.Records)),
	)
	return ds
}
