package series

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"motorsportcal/internal/fetch"
)

// fakeFetcher serves canned responses keyed by URL and records the order
// of requests.
type fakeFetcher struct {
	responses map[string][]byte
	requests  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string][]byte)}
}

func (f *fakeFetcher) add(url, body string) {
	f.responses[url] = []byte(body)
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ ...fetch.Option) ([]byte, error) {
	f.requests = append(f.requests, url)
	body, ok := f.responses[url]
	if !ok {
		return nil, &fetch.TransportError{
			URL:    url,
			Status: http.StatusNotFound,
			Err:    errors.New("no canned response"),
		}
	}
	return body, nil
}

// icsFeed wraps VEVENT bodies in a minimal calendar envelope.
func icsFeed(events ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n")
	for _, ev := range events {
		b.WriteString("BEGIN:VEVENT\r\n")
		b.WriteString(ev)
		b.WriteString("END:VEVENT\r\n")
	}
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func vevent(summary, location, start, end string) string {
	var b strings.Builder
	b.WriteString("UID:" + start + summary + "\r\n")
	b.WriteString("SUMMARY:" + summary + "\r\n")
	if location != "" {
		b.WriteString("LOCATION:" + location + "\r\n")
	}
	b.WriteString("DTSTART:" + start + "\r\nDTEND:" + end + "\r\n")
	return b.String()
}
