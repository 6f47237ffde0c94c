package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const (
	UserAgent       = "fnp-results/1.0 (github.com/larraunpilota/fnp-results)"
	Timeout         = 15 * time.Second
	RequestInterval = 275 * time.Millisecond
	DefaultEncoding = "windows-1252"

	maxBodyBytes = 8 << 20
)

// Page is a fetched and decoded HTML page
type Page struct {
	URL  string
	Body string
}

// Size returns the decoded body length in bytes
func (p *Page) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Body)
}

// UnavailableError reports a page that could not be fetched. The caller treats the
// URL as having zero rows.
type UnavailableError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("page unavailable %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("page unavailable %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is an UnavailableError
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// PageFetcher fetches one page. Implemented by Fetcher and by test doubles.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Options configures a Fetcher
type Options struct {
	Timeout   time.Duration
	Interval  time.Duration
	UserAgent string
	Encoding  string
	Client    *http.Client
}

// Fetcher retrieves pages over HTTP, waiting on a shared rate limiter before
// every request
type Fetcher struct {
	client    *http.Client
	userAgent string
	encoding  encoding.Encoding
	limiter   *rate.Limiter
}

// NewFetcher creates a Fetcher. An unknown encoding name is a configuration error.
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}

	enc, err := htmlindex.Get(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown page encoding %q: %w", opts.Encoding, err)
	}

	client := &http.Client{}
	if opts.Client != nil {
		c := *opts.Client
		client = &c
	}
	client.Timeout = opts.Timeout

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		encoding:  enc,
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

// Fetch retrieves url and decodes its body from the configured encoding.
//
// Transport errors, timeouts and non-2xx statuses come back as *UnavailableError.
// A cancelled context is returned as the context's error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnavailableError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UnavailableError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnavailableError{URL: url, Err: fmt.Errorf("fetching page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnavailableError{URL: url, StatusCode: resp.StatusCode}
	}

	decoded := transform.NewReader(io.LimitReader(resp.Body, maxBodyBytes), f.encoding.NewDecoder())
	body, err := io.ReadAll(decoded)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnavailableError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return &Page{URL: url, Body: string(body)}, nil
}
