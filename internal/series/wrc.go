package series

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"motorsportcal/internal/fetch"
	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
	"motorsportcal/internal/schedule"
)

const (
	defaultWRCCalendarURL = "https://api.wrc.com/content/filters/calendar"
	defaultWRCScheduleURL = "https://api.rally.tv/content/filters/schedule"
)

// WRC ingests the championship's JSON API: a season calendar endpoint plus
// a per-event schedule endpoint for stage detail.
type WRC struct {
	fetcher     fetch.Fetcher
	calendarURL string
	scheduleURL string
	policy      schedule.ConfirmPolicy
	now         func() time.Time
}

// NewWRC creates the WRC API provider. Empty URLs select the production
// endpoints.
func NewWRC(fetcher fetch.Fetcher, calendarURL, scheduleURL string, policy schedule.ConfirmPolicy) *WRC {
	if calendarURL == "" {
		calendarURL = defaultWRCCalendarURL
	}
	if scheduleURL == "" {
		scheduleURL = defaultWRCScheduleURL
	}
	return &WRC{
		fetcher:     fetcher,
		calendarURL: calendarURL,
		scheduleURL: scheduleURL,
		policy:      policy,
		now:         time.Now,
	}
}

func (p *WRC) Series() model.Series { return model.SeriesWRC }

// msTime decodes the API's milliseconds-since-epoch timestamps.
type msTime struct {
	time.Time
}

func (t *msTime) UnmarshalJSON(data []byte) error {
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

type wrcCalendarResponse struct {
	Content []struct {
		Title     string `json:"title"`
		StartDate msTime `json:"startDate"`
		EndDate   msTime `json:"endDate"`
		SeriesUID string `json:"seriesUid"`
	} `json:"content"`
}

type wrcScheduleResponse struct {
	Content []struct {
		UID           string `json:"uid"`
		Title         string `json:"title"`
		AvailableOn   msTime `json:"availableOn"`
		AvailableTill msTime `json:"availableTill"`
	} `json:"content"`
}

// Events fetches the season calendar and, while events classify as
// confirmed, their stage detail. Detail fetching stops at the first
// non-confirmed event to bound request volume; later events are still
// recorded without stages.
func (p *WRC) Events(ctx context.Context, year int) ([]model.Event, error) {
	calendarURL := fmt.Sprintf("%s?championship=wrc&year=%d", p.calendarURL, year)
	body, err := p.fetcher.Fetch(ctx, calendarURL)
	if err != nil {
		return nil, err
	}

	var calendar wrcCalendarResponse
	if err := json.Unmarshal(body, &calendar); err != nil {
		return nil, &schedule.MalformedSourceError{Source: "wrc calendar", Err: err}
	}

	policy := p.policy
	policy.Now = p.now()

	fetchStages := true
	events := make([]model.Event, 0, len(calendar.Content))
	for _, entry := range calendar.Content {
		if entry.Title == "" || entry.SeriesUID == "" {
			appLog.Debug("skipping calendar entry without title or uid")
			continue
		}

		event := model.Event{
			Title:     entry.Title,
			StartDate: entry.StartDate.Time,
			EndDate:   entry.EndDate.Time,
		}

		if fetchStages {
			appLog.Info("getting stages", "event", entry.Title)
			stages, err := p.eventStages(ctx, entry.SeriesUID, entry.StartDate.Time, entry.EndDate.Time)
			if err != nil {
				return nil, err
			}
			event.Stages = stages
			event.SortStages()
		}

		schedule.ClassifyEvent(&event, policy)
		fetchStages = event.IsConfirmed
		events = append(events, event)
	}

	model.SortEvents(events)
	return events, nil
}

func (p *WRC) eventStages(ctx context.Context, seriesUID string, start, end time.Time) ([]model.Stage, error) {
	query := url.Values{}
	query.Set("byListingTime", fmt.Sprintf("%d~%d", start.UnixMilli(), end.UnixMilli()))
	query.Set("seriesUid", seriesUID)

	body, err := p.fetcher.Fetch(ctx, p.scheduleURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var sched wrcScheduleResponse
	if err := json.Unmarshal(body, &sched); err != nil {
		return nil, &schedule.MalformedSourceError{Source: "wrc schedule", Err: err}
	}

	stages := make([]model.Stage, 0, len(sched.Content))
	for _, item := range sched.Content {
		if item.Title == "" {
			continue
		}
		typ := model.StageTypeFromTitle(item.Title)
		stages = append(stages, model.Stage{
			Title:         item.Title,
			StartDate:     item.AvailableOn.Time,
			EndDate:       item.AvailableTill.Time,
			IsSignificant: typ == model.StageTypeSpecialStage || typ == model.StageTypePowerStage,
			IsConfirmed:   true,
			Type:          typ,
		})
	}
	return stages, nil
}
