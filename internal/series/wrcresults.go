package series

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"motorsportcal/internal/fetch"
	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
	"motorsportcal/internal/schedule"
)

const defaultResultsBaseURL = "https://www.ewrc-results.com"

// WRCResults scrapes the rally results site: the season index page for
// event names and coarse dates, then one timetable page per event for
// stage times.
type WRCResults struct {
	fetcher  fetch.Fetcher
	baseURL  string
	timezone string
	policy   schedule.ConfirmPolicy
}

// NewWRCResults creates the results-site provider. timezone is sent as a
// cookie so timetable pages render in a known zone.
func NewWRCResults(fetcher fetch.Fetcher, baseURL, timezone string, policy schedule.ConfirmPolicy) *WRCResults {
	if baseURL == "" {
		baseURL = defaultResultsBaseURL
	}
	return &WRCResults{fetcher: fetcher, baseURL: baseURL, timezone: timezone, policy: policy}
}

func (p *WRCResults) Series() model.Series { return model.SeriesWRC }

// coarseDatePattern matches "D. M." with an optional trailing year, the
// format of the season index's event-info dates.
var coarseDatePattern = regexp.MustCompile(`(\d{1,2})\.\s*(\d{1,2})\.(?:\s*(\d{4}))?`)

// timePattern locates the HH:MM portion of a timetable cell, which may
// carry surrounding annotations.
var timePattern = regexp.MustCompile(`(\d{1,2}:\d{2})`)

// Events scrapes the season and timetable pages into the year's event
// sequence.
func (p *WRCResults) Events(ctx context.Context, year int) ([]model.Event, error) {
	seasonURL := fmt.Sprintf("%s/season/%d/1-wrc/", p.baseURL, year)
	body, err := p.fetcher.Fetch(ctx, seasonURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &schedule.MalformedSourceError{Source: "rally season index", Err: err}
	}

	var raw []schedule.RawSession
	coarse := make(map[string]schedule.TimeRange)

	for _, node := range doc.Find("div.season-event").EachIter() {
		nameNode := node.Find("div.season-event-name > a").First()
		name := strings.TrimSpace(nameNode.Text())
		href, _ := nameNode.Attr("href")
		if name == "" || href == "" {
			appLog.Debug("skipping season entry without name or link")
			continue
		}

		if r, ok := p.coarseRange(node, year); ok {
			coarse[name] = r
		}

		sessions, err := p.eventSessions(ctx, name, href, year)
		if err != nil {
			return nil, err
		}
		raw = append(raw, sessions...)
	}

	events, err := schedule.GroupEvents(raw, schedule.GroupOptions{
		Source: schedule.SourceResults,
		Year:   year,
		Coarse: coarse,
	})
	if err != nil {
		return nil, err
	}

	schedule.ClassifyEvents(events, p.policy)
	return events, nil
}

// coarseRange parses the "D. M. – D. M. YYYY" span from a season entry.
func (p *WRCResults) coarseRange(node *goquery.Selection, year int) (schedule.TimeRange, bool) {
	infoText := node.Find("div.event-info").Text()
	if i := strings.IndexByte(infoText, ','); i >= 0 {
		infoText = infoText[:i]
	}
	parts := strings.Split(infoText, "–")
	if len(parts) != 2 {
		return schedule.TimeRange{}, false
	}
	start, okStart := parseCoarseDate(parts[0], year)
	end, okEnd := parseCoarseDate(parts[1], year)
	if !okStart || !okEnd {
		return schedule.TimeRange{}, false
	}
	// The listing ends on a calendar day; cover it fully.
	end = end.Add(24*time.Hour - time.Second)
	return schedule.TimeRange{Start: start, End: end}, true
}

func parseCoarseDate(text string, year int) (time.Time, bool) {
	m := coarseDatePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// eventSessions scrapes one event's timetable page. An unparseable time
// fragment abandons the remaining stages of that event rather than
// guessing; the event then degrades to its coarse dates.
func (p *WRCResults) eventSessions(ctx context.Context, name, href string, year int) ([]schedule.RawSession, error) {
	segments := strings.Split(strings.Trim(href, "/"), "/")
	slug := segments[len(segments)-1]

	timetableURL := fmt.Sprintf("%s/timetable/%s/", p.baseURL, slug)
	body, err := p.fetcher.Fetch(ctx, timetableURL, fetch.WithCookie("timezone", p.timezone))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &schedule.MalformedSourceError{Source: "rally timetable", Err: err}
	}

	// The page may declare the zone its times render in; default is UTC.
	zone := schedule.DetectZone(doc.Find("script").Text())
	resolver := schedule.NewDateResolver(year, zone)

	var sessions []schedule.RawSession
	ordinal := 0
	for _, row := range doc.Find("div.mt-3").First().Children().EachIter() {
		if row.Children().Length() == 0 {
			continue
		}

		code := strings.TrimSpace(row.Find(".harm-ss").Text())
		stageName := strings.TrimSpace(row.Find(".harm-stage").Text())
		if stageName == "" && code == "" {
			continue
		}

		fragment := timetableFragment(row)
		start, err := resolver.Resolve(fragment)
		if err != nil {
			// Guessed times would poison downstream consumers; drop the
			// event's stages entirely.
			appLog.Info("abandoning stages after unresolvable time",
				"event", name, "fragment", fragment)
			return nil, nil
		}

		title := stageName
		if code != "" {
			title = code + " " + stageName
		}
		typ := model.StageTypeFromTitle(title)

		sessions = append(sessions, schedule.RawSession{
			StageLabel:       title,
			GroupingKey:      name,
			Start:            start,
			ConfirmationHint: !strings.HasSuffix(title, schedule.TBCSuffix),
			Ordinal:          ordinal,
			Significant:      typ == model.StageTypeSpecialStage || typ == model.StageTypePowerStage,
			Type:             typ,
		})
		ordinal++
	}
	return sessions, nil
}

// timetableFragment assembles the resolver input from a timetable row: the
// HH:MM cell plus the "DD. MM." date cell when the row carries one.
func timetableFragment(row *goquery.Selection) string {
	timeNode := row.Find(".harm-time").First()
	timeText := strings.TrimSpace(timeNode.Next().Text())
	if timeText == "" {
		timeText = strings.TrimSpace(timeNode.Text())
	}
	if m := timePattern.FindString(timeText); m != "" {
		timeText = m
	}

	dateText := strings.TrimSpace(row.Find(".harm-date").Text())
	// The date cell leads with a weekday abbreviation: "thu 25. 4.".
	if i := strings.IndexAny(dateText, " \t"); i >= 0 {
		dateText = strings.TrimSpace(dateText[i+1:])
	} else {
		dateText = ""
	}

	if dateText == "" {
		return timeText
	}
	return timeText + " " + dateText
}
