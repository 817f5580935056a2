// internal/loader/fetcher.go
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

// Fetcher retrieves one file addressed by a slash-separated path such as
// "/base/data/manifest.json".
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// maxBodyBytes caps a single fetched document.
const maxBodyBytes = 64 << 20

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Client            *http.Client
}

// HTTPFetcher fetches files relative to an origin URL.
type HTTPFetcher struct {
	origin    string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewHTTPFetcher creates a fetcher for origin (e.g. "https://example.org").
func NewHTTPFetcher(origin string, opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "difr/1.0"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}
	return &HTTPFetcher{
		origin:    strings.TrimRight(origin, "/"),
		client:    client,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// URL returns the absolute URL for name.
func (f *HTTPFetcher) URL(name string) string {
	return f.origin + "/" + strings.TrimLeft(name, "/")
}

// Fetch performs a GET and returns the body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := f.URL(name)
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "read body of %s", url)
	}
	return body, nil
}

// FSFetcher reads files from a filesystem rooted at a directory, so a static
// export directory can be loaded the same way it is served.
type FSFetcher struct {
	fs afero.Fs
}

// NewFSFetcher serves files under root on fs.
func NewFSFetcher(fs afero.Fs, root string) *FSFetcher {
	return &FSFetcher{fs: afero.NewBasePathFs(fs, root)}
}

// Fetch reads name from the filesystem.
func (f *FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + name)
	data, err := afero.ReadFile(f.fs, clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "%s not found", clean)
		}
		return nil, eris.Wrapf(err, "read %s", clean)
	}
	return data, nil
}

// NewFetcher picks an HTTPFetcher for http(s) sources and an FSFetcher over
// fs for anything else.
func NewFetcher(fs afero.Fs, source string, opts HTTPOptions) Fetcher {
	if IsRemote(source) {
		return NewHTTPFetcher(source, opts)
	}
	return NewFSFetcher(fs, source)
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
