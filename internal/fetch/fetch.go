package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "motorsportcal/internal/log"
)

// TransportError reports a failed document retrieval: network failure,
// non-200 status or an unreadable body. It is fatal for the series being
// updated in the current run.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", redactURL(e.URL), e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", redactURL(e.URL), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Option customizes a single fetch: extra headers or cookies. Cookies are
// passed explicitly per request; there is no shared cookie jar, so
// concurrent series pipelines stay isolated.
type Option func(*options)

type options struct {
	headers http.Header
	cookies []*http.Cookie
}

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// WithCookie attaches a cookie to the request.
func WithCookie(name, value string) Option {
	return func(o *options) {
		o.cookies = append(o.cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetcher retrieves the raw bytes of a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts ...Option) ([]byte, error)
}

// HTTPFetcher retrieves documents over plain HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves url and returns the body. Any non-200 status is a
// *TransportError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	for key, values := range o.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for _, c := range o.cookies {
		req.AddCookie(c)
	}

	appLog.Debug("fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: url, Status: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	appLog.Debug("fetch done", "url", redactURL(url), "bytes", len(body))
	return body, nil
}

// redactURL hides query strings and deep paths when logging URLs; some feed
// URLs embed access tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "url://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	if j == len(u) {
		return u
	}
	return u[:j] + redactedSuffix
}
