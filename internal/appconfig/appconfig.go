// internal/appconfig/appconfig.go
// Package appconfig defines the application configuration and interprets its
// defaults. The cli package fills it from viper.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for fetching audit data.
	defaultRequestTimeout = 30 * time.Second
	// defaultConcurrency bounds in-flight audit file fetches.
	defaultConcurrency = 8
	// defaultTopN is the number of leaderboard rows shown before "show all".
	defaultTopN = 10
	// defaultOutputDir is where `build` writes the static export.
	defaultOutputDir = "dist"
	// defaultAddr is the listen address for `serve`.
	defaultAddr = ":8080"
)

// Config represents the top-level application configuration.
type Config struct {
	// Source is an http(s) origin or a local directory holding data/.
	Source string `json:"source" mapstructure:"source"`
	// BasePath prefixes every asset and data URL (e.g. "/inference-provider-leaderboard").
	BasePath          string  `json:"basePath" mapstructure:"basePath"`
	OutputDir         string  `json:"outputDir,omitempty" mapstructure:"outputDir"`
	LogFile           string  `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug             bool    `json:"debug" mapstructure:"debug"`
	TimeoutSeconds    int     `json:"timeout,omitempty" mapstructure:"timeout"`
	Concurrency       int     `json:"concurrency,omitempty" mapstructure:"concurrency"`
	RequestsPerSecond float64 `json:"requestsPerSecond,omitempty" mapstructure:"requestsPerSecond"`
	TopN              int     `json:"topN,omitempty" mapstructure:"topN"`
	Addr              string  `json:"addr,omitempty" mapstructure:"addr"`
	UserAgent         string  `json:"userAgent,omitempty" mapstructure:"userAgent"`
	Title             string  `json:"title,omitempty" mapstructure:"title"`
	ConfigPath        string  `json:"-" mapstructure:"-"`
}

// RequestTimeout returns the timeout for a single fetch, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FetchConcurrency returns the configured fetch concurrency.
func (c Config) FetchConcurrency() int {
	if c.Concurrency <= 0 {
		return defaultConcurrency
	}
	return c.Concurrency
}

// LeaderboardTopN returns how many leaderboard rows are shown by default.
func (c Config) LeaderboardTopN() int {
	if c.TopN <= 0 {
		return defaultTopN
	}
	return c.TopN
}

// OutputPath returns the export directory.
func (c Config) OutputPath() string {
	if dir := strings.TrimSpace(c.OutputDir); dir != "" {
		return dir
	}
	return defaultOutputDir
}

// ListenAddr returns the address `serve` listens on.
func (c Config) ListenAddr() string {
	if addr := strings.TrimSpace(c.Addr); addr != "" {
		return addr
	}
	return defaultAddr
}

// NormalizedBasePath returns the base path with a single leading slash and no
// trailing slash; the root path is returned as "".
func (c Config) NormalizedBasePath() string {
	return NormalizeBasePath(c.BasePath)
}

// NormalizeBasePath cleans a base-path prefix. "", "/" and "  " all map to "".
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("config must set a data source (source or --source)")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requestsPerSecond must not be negative, got %v", c.RequestsPerSecond)
	}
	return nil
}
