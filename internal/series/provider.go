// Package series implements one provider per calendar source: the
// Formula 1 iCal feed, the WRC JSON API, the rally results site scraper
// and the WEC program page scraper. Providers own the source-specific
// heuristics and hand uniform event sequences to the pipeline.
package series

import (
	"context"
	"strings"

	"motorsportcal/internal/model"
)

// Provider computes the event sequence for one series and year.
type Provider interface {
	Series() model.Series
	Events(ctx context.Context, year int) ([]model.Event, error)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
