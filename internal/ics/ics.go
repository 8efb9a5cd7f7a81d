// Package ics extracts session records from iCalendar feeds published by
// racing series. Feeds are uncontrolled input: individual malformed
// VEVENTs are skipped, only a calendar that fails to parse at all is
// fatal.
package ics

import (
	"bytes"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/schedule"
)

// Session is one VEVENT narrowed to the fields the extractors consume.
type Session struct {
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// ParseSessions parses an iCal payload and returns the sessions whose
// start date falls in the target year, in feed order. Recurring entries
// are expanded within the year window. Records missing a summary or start
// timestamp are excluded; source names the feed for error context.
func ParseSessions(source string, body []byte, year int) ([]Session, error) {
	normalized := bytes.ReplaceAll(body, []byte("\r\n"), []byte("\n"))

	cal, err := ical.ParseCalendar(bytes.NewReader(normalized))
	if err != nil {
		return nil, &schedule.MalformedSourceError{Source: source, Err: err}
	}

	sessions := make([]Session, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		extracted, err := parseVEvent(ve, year)
		if err != nil {
			appLog.Debug("skipping vevent", "source", source, "reason", err.Error())
			continue
		}
		sessions = append(sessions, extracted...)
	}

	appLog.Debug("ics parse completed", "source", source, "sessions", len(sessions))
	return sessions, nil
}

func parseVEvent(ve *ical.VEvent, year int) ([]Session, error) {
	summaryProp := ve.GetProperty(ical.ComponentPropertySummary)
	if summaryProp == nil || summaryProp.Value == "" {
		return nil, &schedule.ExtractionError{Field: "summary", Record: "vevent"}
	}
	summary := summaryProp.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, &schedule.ExtractionError{Field: "dtstart", Record: summary}
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return nil, &schedule.ExtractionError{Field: "dtend", Record: summary}
	}

	var location string
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		location = p.Value
	}

	base := Session{
		Summary:  summary,
		Location: location,
		Start:    start,
		End:      end,
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		return expandRecurring(base, rruleProp.Value, year), nil
	}

	if base.Start.Year() != year {
		return nil, nil
	}
	return []Session{base}, nil
}

// expandRecurring materializes a recurring entry's occurrences within the
// target year, preserving the base event's duration.
func expandRecurring(base Session, rawRule string, year int) []Session {
	rule, err := rrule.StrToRRule(rawRule)
	if err != nil {
		appLog.Debug("unparseable rrule, keeping base occurrence",
			"summary", base.Summary, "rrule", rawRule)
		if base.Start.Year() != year {
			return nil
		}
		return []Session{base}
	}
	rule.DTStart(base.Start)

	loc := base.Start.Location()
	windowStart := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	windowEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc).Add(-time.Second)

	duration := base.End.Sub(base.Start)
	occurrences := rule.Between(windowStart, windowEnd, true)

	out := make([]Session, 0, len(occurrences))
	for _, occStart := range occurrences {
		if occStart.Year() != year {
			continue
		}
		out = append(out, Session{
			Summary:  base.Summary,
			Location: base.Location,
			Start:    occStart,
			End:      occStart.Add(duration),
		})
	}
	return out
}
