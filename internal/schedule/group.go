package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	appLog "motorsportcal/internal/log"
	"motorsportcal/internal/model"
)

// PreSeasonTesting is the sentinel grouping key for feed sessions whose
// summary announces pre-season testing; those are grouped under this name
// regardless of location.
const PreSeasonTesting = "Pre-Season Testing"

// TimeRange is a coarse start/end pair obtained independently of the stage
// listing, e.g. from a season index page.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// GroupOptions controls event derivation for one source document.
type GroupOptions struct {
	Source Source
	Year   int
	// Coarse supplies fallback event dates per grouping key for events
	// whose stage listing yielded nothing usable.
	Coarse map[string]TimeRange
}

// GroupEvents partitions raw sessions by grouping key, derives one event
// per key (or several for a multi-week pre-season bucket), sorts stages
// chronologically and orders the events by their earliest start.
func GroupEvents(sessions []RawSession, opts GroupOptions) ([]model.Event, error) {
	grouped := lo.GroupBy(sessions, func(s RawSession) string { return s.GroupingKey })

	// Map iteration order is random; recover source document order.
	orderedKeys := lo.Uniq(lo.Map(sessions, func(s RawSession, _ int) string {
		return s.GroupingKey
	}))

	events := make([]model.Event, 0, len(grouped))

	for _, key := range orderedKeys {
		bucket := grouped[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Start.Equal(bucket[j].Start) {
				return bucket[i].Ordinal < bucket[j].Ordinal
			}
			return bucket[i].Start.Before(bucket[j].Start)
		})

		for _, sub := range splitBuckets(key, bucket, opts.Source) {
			event, err := buildEvent(sub.name, sub.sessions, opts)
			if err != nil {
				return nil, err
			}
			if event == nil {
				continue
			}
			events = append(events, *event)
		}
	}

	// Placeholder events for keys that only appear in the coarse index:
	// their stage listing produced nothing, but the season page still
	// knows when they run. Keys are visited in sorted order so events
	// sharing a start date serialize identically across runs.
	coarseKeys := lo.Keys(opts.Coarse)
	sort.Strings(coarseKeys)
	for _, key := range coarseKeys {
		if _, ok := grouped[key]; ok {
			continue
		}
		r := opts.Coarse[key]
		events = append(events, model.Event{
			Title:     postProcessTitle(key, opts),
			StartDate: r.Start,
			EndDate:   r.End,
		})
	}

	model.SortEvents(events)

	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.Title]; dup {
			return nil, &DuplicateEventsError{Title: ev.Title}
		}
		seen[ev.Title] = struct{}{}
	}
	return events, nil
}

type subBucket struct {
	name     string
	sessions []RawSession
}

// splitBuckets splits the feed source's pre-season sentinel bucket into
// numbered sub-events when its sessions span more than one ISO week. A new
// number is assigned whenever the week changes between consecutive
// chronologically-sorted sessions.
func splitBuckets(key string, sessions []RawSession, source Source) []subBucket {
	if source != SourceFeed || key != PreSeasonTesting || !spansMultipleWeeks(sessions) {
		return []subBucket{{name: key, sessions: sessions}}
	}

	var out []subBucket
	var current []RawSession
	prevYear, prevWeek := 0, 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, subBucket{
			name:     fmt.Sprintf("%s %d", key, len(out)+1),
			sessions: current,
		})
		current = nil
	}

	for _, s := range sessions {
		y, w := s.Start.UTC().ISOWeek()
		if len(current) > 0 && (y != prevYear || w != prevWeek) {
			flush()
		}
		current = append(current, s)
		prevYear, prevWeek = y, w
	}
	flush()

	return out
}

func spansMultipleWeeks(sessions []RawSession) bool {
	if len(sessions) < 2 {
		return false
	}
	firstYear, firstWeek := sessions[0].Start.UTC().ISOWeek()
	for _, s := range sessions[1:] {
		if y, w := s.Start.UTC().ISOWeek(); y != firstYear || w != firstWeek {
			return true
		}
	}
	return false
}

func buildEvent(name string, sessions []RawSession, opts GroupOptions) (*model.Event, error) {
	title := postProcessTitle(name, opts)

	stages := make([]model.Stage, 0, len(sessions))
	needSynthesis := false
	for _, s := range sessions {
		if s.End.IsZero() {
			needSynthesis = true
		}
		stages = append(stages, model.Stage{
			Title:         s.StageLabel,
			StartDate:     s.Start,
			EndDate:       s.End,
			IsSignificant: s.Significant,
			IsConfirmed:   s.ConfirmationHint,
			Type:          s.Type,
		})
	}
	if needSynthesis {
		SynthesizeEndDates(stages)
	}

	if duplicates := duplicateStageTitles(stages); len(duplicates) > 0 {
		return nil, &DuplicateStagesError{Event: title, Titles: duplicates}
	}

	event := model.Event{Title: title, Stages: stages}
	if len(stages) > 0 {
		event.Recompute()
		return &event, nil
	}

	// Zero usable stages: fall back to the coarse dates when the caller
	// obtained any, otherwise there is nothing to show.
	if r, ok := opts.Coarse[name]; ok {
		event.StartDate = r.Start
		event.EndDate = r.End
		return &event, nil
	}
	appLog.Debug("dropping event without stages or coarse dates", "event", title)
	return nil, nil
}

func duplicateStageTitles(stages []model.Stage) []string {
	seen := make(map[string]struct{}, len(stages))
	var duplicates []string
	for _, s := range stages {
		key := s.Title + "|" + s.StartDate.UTC().Format(time.RFC3339)
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, s.Title)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// postProcessTitle strips the target year's digits from titles scraped
// verbatim from a season index, which embeds the year inline.
func postProcessTitle(title string, opts GroupOptions) string {
	if opts.Source != SourceResults || opts.Year == 0 {
		return title
	}
	cleaned := strings.ReplaceAll(title, strconv.Itoa(opts.Year), "")
	return strings.Join(strings.Fields(cleaned), " ")
}
