// internal/loader/loader.go
// Package loader fetches the audit manifest and every audit file it lists,
// and substitutes the built-in sample dataset when live loading fails.
package loader

import (
	"context"
	"encoding/json"
	"path"
	"sync"

	"github.com/mwiater/difr/internal/audit"
	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// ManifestName is the manifest file name inside the data directory.
	ManifestName = "manifest.json"
	// DataDir is the directory, relative to the base path, holding the data.
	DataDir = "data"
	// DefaultConcurrency bounds the number of in-flight file fetches.
	DefaultConcurrency = 8
)

var (
	// ErrManifest is returned when the manifest cannot be fetched or parsed.
	ErrManifest = eris.New("manifest unavailable")
	// ErrNoFiles is returned when the manifest lists no audit files.
	ErrNoFiles = eris.New("manifest lists no audit files")
	// ErrNoRecords is returned when no listed file produced a valid record.
	ErrNoRecords = eris.New("no valid audit results found")
)

// Source tells where a Dataset came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Dataset is the record set a presentation works from.
type Dataset struct {
	Records []audit.Record
	Source  Source
	// Err is the load failure that caused a fallback, nil for live data.
	Err error
}

// Manifest is the contents of data/manifest.json.
type Manifest struct {
	Files []string `json:"files"`
}

var manifestSchemaDef = map[string]any{
	"type":     "object",
	"required": []string{"files"},
	"properties": map[string]any{
		"files": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

var manifestSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(manifestSchemaDef))
})

// Loader loads audit records through a Fetcher.
type Loader struct {
	fetcher     Fetcher
	base        string
	concurrency int
	logger      *zap.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithConcurrency bounds concurrent file fetches.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets the logger used for file-level and load-level failures.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader reading {base}/data/... through fetcher.
func New(fetcher Fetcher, base string, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     fetcher,
		base:        base,
		concurrency: DefaultConcurrency,
		logger:      zap.L(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DataPath returns the path of name inside the data directory.
func (l *Loader) DataPath(name string) string {
	return path.Join("/", l.base, DataDir, name)
}

// Load fetches the manifest and every matching audit file. Individual file
// failures are logged and skipped; the load fails as a whole when the
// manifest is unusable, lists no files, or yields no valid record. Records
// keep manifest order regardless of fetch completion order.
func (l *Loader) Load(ctx context.Context) ([]audit.Record, error) {
	manifest, err := l.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	if len(manifest.Files) == 0 {
		return nil, ErrNoFiles
	}

	var names []string
	for _, name := range manifest.Files {
		if audit.MatchesPattern(name) {
			names = append(names, name)
			continue
		}
		l.logger.Debug("skipping manifest entry", zap.String("file", name))
	}

	slots := make([]*audit.Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, name := range names {
		g.Go(func() error {
			rec, err := l.fetchRecord(gctx, name)
			if err != nil {
				l.logger.Warn("dropping audit file", zap.String("file", name), zap.Error(err))
				return nil
			}
			slots[i] = &rec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "load cancelled")
	}

	records := make([]audit.Record, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	l.logger.Info("loaded audit results",
		zap.Int("files", len(names)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// LoadDataset runs Load and substitutes the sample dataset whole on any
// failure. It never returns partial live data.
func (l *Loader) LoadDataset(ctx context.Context) Dataset {
	records, err := l.Load(ctx)
	if err != nil {
		l.logger.Error("error fetching audit results, using sample data", zap.Error(err))
		return Dataset{Records: audit.SampleRecords(), Source: SourceFallback, Err: err}
	}
	return Dataset{Records: records, Source: SourceLive}
}

func (l *Loader) fetchManifest(ctx context.Context) (Manifest, error) {
	body, err := l.fetcher.Fetch(ctx, l.DataPath(ManifestName))
	if err != nil {
		return Manifest{}, eris.Wrapf(ErrManifest, "fetch: %v", err)
	}
	return ParseManifest(body)
}

func (l *Loader) fetchRecord(ctx context.Context, name string) (audit.Record, error) {
	body, err := l.fetcher.Fetch(ctx, l.DataPath(name))
	if err != nil {
		return audit.Record{}, err
	}
	return audit.ParseRecord(name, body)
}

// ParseManifest validates and decodes a manifest document.
func ParseManifest(body []byte) (Manifest, error) {
	schema, err := manifestSchema()
	if err != nil {
		return Manifest{}, eris.Wrap(err, "compile manifest schema")
	}
	if err := audit.ValidateDocument(schema, body); err != nil {
		return Manifest{}, eris.Wrapf(ErrManifest, "malformed: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return Manifest{}, eris.Wrapf(ErrManifest, "decode: %v", err)
	}
	return manifest, nil
}
