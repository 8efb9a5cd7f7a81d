package fetch

import (
	"context"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	appLog "motorsportcal/internal/log"
)

const defaultRenderTimeout = 45 * time.Second

// RenderedFetcher retrieves documents through a headless Chromium instance.
// It is used for scraped sources whose pages require script execution
// before the schedule tables exist in the DOM.
type RenderedFetcher struct {
	timeout time.Duration
}

// NewRenderedFetcher creates a RenderedFetcher with the given per-page
// timeout.
func NewRenderedFetcher(timeout time.Duration) *RenderedFetcher {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &RenderedFetcher{timeout: timeout}
}

// Fetch navigates to pageURL, waits for the document body and returns the
// rendered HTML. Cookies from the options are installed for the page's
// host before navigation; headers are applied as extra network headers.
func (f *RenderedFetcher) Fetch(ctx context.Context, pageURL string, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, f.timeout)
	defer timeoutCancel()

	tasks := chromedp.Tasks{}

	if len(o.headers) > 0 {
		extra := make(network.Headers, len(o.headers))
		for key := range o.headers {
			extra[key] = o.headers.Get(key)
		}
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(extra))
	}

	for _, c := range o.cookies {
		cookie := c
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(parsed.Hostname()).
				WithPath("/").
				Do(ctx)
		}))
	}

	var html string
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	appLog.Debug("rendered fetch start", "url", redactURL(pageURL))

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	appLog.Debug("rendered fetch done", "url", redactURL(pageURL), "bytes", len(html))
	return []byte(html), nil
}
