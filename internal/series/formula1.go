package series

import (
	"context"
	"strings"

	"motorsportcal/internal/fetch"
	"motorsportcal/internal/ics"
	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
	"motorsportcal/internal/schedule"
)

// sessionTypes maps the "- <name>" suffix of a feed summary to the
// canonical stage title and type. The feed renamed the sprint qualifying
// session between seasons; both spellings map to the same stage.
var sessionTypes = []struct {
	match string
	title string
	typ   model.StageType
}{
	{"Practice 1", "Practice 1", model.StageTypePractice},
	{"Practice 2", "Practice 2", model.StageTypePractice},
	{"Practice 3", "Practice 3", model.StageTypePractice},
	{"Sprint Shootout", "Sprint Qualification", model.StageTypeSprintQualifying},
	{"Sprint Qualification", "Sprint Qualification", model.StageTypeSprintQualifying},
	{"Sprint Race", "Sprint Race", model.StageTypeSprint},
	{"Qualifying", "Qualifying", model.StageTypeQualifying},
	{"Race", "Race", model.StageTypeRace},
}

// Formula1 ingests the season's iCal feed.
type Formula1 struct {
	fetcher     fetch.Fetcher
	calendarURL string
	policy      schedule.ConfirmPolicy
}

// NewFormula1 creates the Formula 1 provider for the given feed URL.
func NewFormula1(fetcher fetch.Fetcher, calendarURL string, policy schedule.ConfirmPolicy) *Formula1 {
	return &Formula1{fetcher: fetcher, calendarURL: calendarURL, policy: policy}
}

func (p *Formula1) Series() model.Series { return model.SeriesFormula1 }

// Events fetches and normalizes the feed into the year's event sequence.
func (p *Formula1) Events(ctx context.Context, year int) ([]model.Event, error) {
	body, err := p.fetcher.Fetch(ctx, p.calendarURL)
	if err != nil {
		return nil, err
	}

	sessions, err := ics.ParseSessions("formula1 calendar", body, year)
	if err != nil {
		return nil, err
	}

	raw := make([]schedule.RawSession, 0, len(sessions))
	for i, s := range sessions {
		preSeason := containsFold(s.Summary, "pre-season testing")
		if s.Location == "" && !preSeason {
			// Location is mandatory for naming; exclude the record.
			appLog.Debug("skipping feed session without location", "summary", s.Summary)
			continue
		}

		key := GrandPrixName(s.Summary, s.Location)
		if preSeason {
			key = schedule.PreSeasonTesting
		}

		title, typ := splitSessionType(s.Summary)
		if title == "" {
			// Unsupported session kind: keep the summary tail so the
			// event still knows its time span; stages are dropped below.
			title = summaryTail(s.Summary)
		}

		raw = append(raw, schedule.RawSession{
			StageLabel:       title,
			GroupingKey:      key,
			Start:            s.Start,
			End:              s.End,
			ConfirmationHint: !strings.HasSuffix(s.Summary, schedule.TBCSuffix),
			Ordinal:          i,
			Significant:      !containsFold(title, "practice"),
			Type:             typ,
		})
	}

	events, err := schedule.GroupEvents(raw, schedule.GroupOptions{
		Source: schedule.SourceFeed,
		Year:   year,
	})
	if err != nil {
		return nil, err
	}

	// An event containing a session of an unsupported kind keeps its dates
	// but loses stage detail; partial stage lists would misrepresent the
	// weekend.
	for i := range events {
		if hasUnknownStage(events[i].Stages) {
			appLog.Info("dropping stage detail for event with unsupported session",
				"event", events[i].Title)
			events[i].Stages = nil
		}
	}

	schedule.ClassifyEvents(events, p.policy)
	return events, nil
}

func splitSessionType(summary string) (string, model.StageType) {
	for _, st := range sessionTypes {
		if strings.Contains(summary, "- "+st.match) {
			return st.title, st.typ
		}
	}
	return "", model.StageTypeUnknown
}

// summaryTail returns everything after the first " - " separator, the
// session portion of a feed summary.
func summaryTail(summary string) string {
	parts := strings.Split(summary, " - ")
	if len(parts) < 2 {
		return summary
	}
	return strings.Join(parts[1:], " - ")
}

func hasUnknownStage(stages []model.Stage) bool {
	for _, s := range stages {
		if !s.Type.Known() {
			return true
		}
	}
	return false
}
