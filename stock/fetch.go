// Package stock fetches company pages from the exchange's data portal
package stock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"psxscreener/cache"
	"psxscreener/finance"

	"github.com/rs/zerolog"
)

// maxBody caps how much of a company page is read
const maxBody = 16 << 20

const (
	ModeHTTP    = "http"
	ModeBrowser = "browser"
)

// FetchError is returned when a company page cannot be retrieved: transport
// failure, timeout or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: received non-2xx status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Renderer produces the HTML of a page after client-side scripts ran
type Renderer interface {
	Render(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// Options configures a Fetcher
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Mode      string
	CacheTTL  time.Duration
}

// Fetcher retrieves one company page per call
type Fetcher struct {
	opts     Options
	client   *http.Client
	cache    *cache.Cache
	renderer Renderer
	log      zerolog.Logger
}

// NewFetcher builds a fetcher. c may be nil to disable caching; renderer is
// only used in ModeBrowser.
func NewFetcher(opts Options, c *cache.Cache, renderer Renderer, log zerolog.Logger) *Fetcher {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Mode == "" {
		opts.Mode = ModeHTTP
	}
	return &Fetcher{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		cache:    c,
		renderer: renderer,
		log:      log,
	}
}

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// URLFor returns the company page URL for symbol
func (f *Fetcher) URLFor(symbol string) string {
	return fmt.Sprintf("%s/%s", f.opts.BaseURL, NormalizeSymbol(symbol))
}

// Fetch downloads the company page for symbol and flattens it
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (*finance.RawDocument, error) {
	url := f.URLFor(symbol)
	key := fmt.Sprintf("psx-page:%s:%s", f.opts.Mode, NormalizeSymbol(symbol))

	html, err := cache.Memoize(ctx, f.cache, key, f.opts.CacheTTL, func() (string, error) {
		f.log.Debug().Str("url", url).Str("mode", f.opts.Mode).Msg("fetching company page")
		if f.opts.Mode == ModeBrowser {
			return f.render(ctx, url)
		}
		return f.get(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	return finance.NewRawDocument(html)
}

func (f *Fetcher) render(ctx context.Context, url string) (string, error) {
	if f.renderer == nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("browser mode without a renderer")}
	}
	html, err := f.renderer.Render(ctx, url, f.opts.Timeout)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return html, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, maxBody))
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return string(body), nil
}
