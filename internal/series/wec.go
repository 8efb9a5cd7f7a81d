package series

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"motorsportcal/internal/fetch"
	"motorsportcal/internal/ics"
	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
	"motorsportcal/internal/schedule"
)

const defaultWECProgramURL = "https://info.sportall.tv/program/FIA%%20WEC/en/output_FIA%%20WEC_1_%d.html"

// WEC scrapes the broadcaster's program page: one table per event, each
// carrying a confirmed-sessions table and a link to the event's iCal feed.
type WEC struct {
	fetcher    fetch.Fetcher
	programURL string
	policy     schedule.ConfirmPolicy
}

// NewWEC creates the WEC provider. programURL must contain a %d verb for
// the year; empty selects the production page.
func NewWEC(fetcher fetch.Fetcher, programURL string, policy schedule.ConfirmPolicy) *WEC {
	if programURL == "" {
		programURL = defaultWECProgramURL
	}
	return &WEC{fetcher: fetcher, programURL: programURL, policy: policy}
}

func (p *WEC) Series() model.Series { return model.SeriesWEC }

// Events scrapes the program page and each linked event calendar.
func (p *WEC) Events(ctx context.Context, year int) ([]model.Event, error) {
	body, err := p.fetcher.Fetch(ctx, fmt.Sprintf(p.programURL, year))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &schedule.MalformedSourceError{Source: "wec program page", Err: err}
	}

	var all []model.Event
	for _, table := range doc.Find("table.liveEventsTable").EachIter() {
		events, err := p.tableEvents(ctx, table, year)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}

	model.SortEvents(all)
	return all, nil
}

func (p *WEC) tableEvents(ctx context.Context, table *goquery.Selection, year int) ([]model.Event, error) {
	calendarURL, ok := table.Find("a img").Last().Parent().Attr("href")
	if !ok || calendarURL == "" {
		appLog.Debug("skipping program table without calendar link")
		return nil, nil
	}

	body, err := p.fetcher.Fetch(ctx, calendarURL)
	if err != nil {
		return nil, err
	}

	sessions, err := ics.ParseSessions("wec event calendar", body, year)
	if err != nil {
		return nil, err
	}

	raw := make([]schedule.RawSession, 0, len(sessions))
	for i, s := range sessions {
		label := summaryTail(s.Summary)
		raw = append(raw, schedule.RawSession{
			StageLabel:       label,
			GroupingKey:      wecEventName(s.Summary, year),
			Start:            s.Start,
			End:              s.End,
			ConfirmationHint: !strings.HasSuffix(s.Summary, schedule.TBCSuffix),
			Ordinal:          i,
			Significant:      !containsFold(label, "practice"),
			Type:             model.StageTypeFromTitle(label),
		})
	}

	events, err := schedule.GroupEvents(raw, schedule.GroupOptions{
		Source: schedule.SourceFeed,
		Year:   year,
	})
	if err != nil {
		return nil, err
	}

	// The program table's session list is authoritative about which times
	// are still TBC; it overrides the feed's own markers.
	if len(events) > 0 {
		schedule.ApplyOverrides(&events[0], confirmedSessions(table))
	}

	schedule.ClassifyEvents(events, p.policy)
	return events, nil
}

// confirmedSessions extracts the companion session table: one row per
// session, last cell holding the time or the literal "TBC".
func confirmedSessions(table *goquery.Selection) map[string]bool {
	confirmed := make(map[string]bool)
	for _, row := range table.Find("#sessions tr").EachIter() {
		cells := row.Children()
		if cells.Length() < 2 {
			continue
		}
		name := strings.TrimSpace(cells.First().Text())
		if name == "" {
			continue
		}
		timeText := strings.TrimSpace(cells.Last().Text())
		confirmed[name] = timeText != "TBC"
	}
	return confirmed
}

// wecEventName derives the event title from a feed summary: the part
// before the first " - " separator, with an inline year suffix stripped.
func wecEventName(summary string, year int) string {
	name := summary
	if i := strings.Index(summary, " - "); i >= 0 {
		name = summary[:i]
	}
	name = strings.TrimSuffix(name, " "+strconv.Itoa(year))
	return strings.TrimSpace(name)
}
