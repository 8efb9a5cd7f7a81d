package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Series identifies one championship whose calendar is tracked
// independently of the others.
type Series string

const (
	SeriesFormula1 Series = "formula1"
	SeriesWRC      Series = "wrc"
	SeriesWEC      Series = "wec"
)

// AllSeries lists every known series in a stable order.
func AllSeries() []Series {
	return []Series{SeriesFormula1, SeriesWRC, SeriesWEC}
}

// KnownSeries reports whether s is one of the tracked series.
func KnownSeries(s Series) bool {
	switch s {
	case SeriesFormula1, SeriesWRC, SeriesWEC:
		return true
	}
	return false
}

// StageType tags the kind of session a stage represents. Values outside the
// known set are preserved as-is so unrecognized tags round-trip losslessly.
type StageType string

const (
	StageTypeUnknown          StageType = "unknown"
	StageTypePractice         StageType = "practice"
	StageTypeQualifying       StageType = "qualifying"
	StageTypeSprint           StageType = "sprint"
	StageTypeSprintQualifying StageType = "sprint-qualifying"
	StageTypeRace             StageType = "race"
	StageTypeShakedown        StageType = "shakedown"
	StageTypeSpecialStage     StageType = "special-stage"
	StageTypePowerStage       StageType = "power-stage"
	StageTypePodium           StageType = "podium"
	StageTypeHyperpole        StageType = "hyperpole"
)

// Known reports whether t is a recognized stage type.
func (t StageType) Known() bool {
	switch t {
	case StageTypePractice, StageTypeQualifying, StageTypeSprint,
		StageTypeSprintQualifying, StageTypeRace, StageTypeShakedown,
		StageTypeSpecialStage, StageTypePowerStage, StageTypePodium,
		StageTypeHyperpole:
		return true
	}
	return false
}

// StageTypeFromTitle derives a stage type from a human-readable stage title.
// Returns StageTypeUnknown when the title matches no known session kind.
func StageTypeFromTitle(title string) StageType {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "power stage"):
		return StageTypePowerStage
	case strings.Contains(lower, "shakedown"):
		return StageTypeShakedown
	case strings.Contains(lower, "hyperpole"):
		return StageTypeHyperpole
	case strings.Contains(lower, "sprint qualification"),
		strings.Contains(lower, "sprint shootout"),
		strings.Contains(lower, "sprint qualifying"):
		return StageTypeSprintQualifying
	case strings.Contains(lower, "sprint"):
		return StageTypeSprint
	case strings.Contains(lower, "qualifying"):
		return StageTypeQualifying
	case strings.Contains(lower, "practice"):
		return StageTypePractice
	case strings.Contains(lower, "podium"):
		return StageTypePodium
	case strings.HasPrefix(lower, "ss"):
		return StageTypeSpecialStage
	case strings.Contains(lower, "race"):
		return StageTypeRace
	}
	return StageTypeUnknown
}

// Stage is a single timed session or segment within an event.
type Stage struct {
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	IsSignificant bool
	IsConfirmed   bool
	Type          StageType
}

// Event is a named competition weekend composed of ordered stages.
type Event struct {
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	Stages      []Stage
	IsConfirmed bool
}

// Recompute derives the event-level start and end dates from the stages.
// Events without stages keep whatever coarse dates they already carry.
func (e *Event) Recompute() {
	if len(e.Stages) == 0 {
		return
	}
	start := e.Stages[0].StartDate
	end := e.Stages[0].EndDate
	for _, s := range e.Stages[1:] {
		if s.StartDate.Before(start) {
			start = s.StartDate
		}
		if s.EndDate.After(end) {
			end = s.EndDate
		}
	}
	e.StartDate = start
	e.EndDate = end
}

// Validate checks the structural invariants of an event: start before end,
// stages sorted ascending by start, and no duplicate (title, start) pairs.
func (e *Event) Validate() error {
	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("event %q: endDate %s before startDate %s",
			e.Title, e.EndDate.Format(time.RFC3339), e.StartDate.Format(time.RFC3339))
	}
	seen := make(map[string]struct{}, len(e.Stages))
	for i, s := range e.Stages {
		if s.EndDate.Before(s.StartDate) {
			return fmt.Errorf("event %q: stage %q ends before it starts", e.Title, s.Title)
		}
		if i > 0 && s.StartDate.Before(e.Stages[i-1].StartDate) {
			return fmt.Errorf("event %q: stage %q out of order", e.Title, s.Title)
		}
		key := s.Title + "|" + s.StartDate.UTC().Format(time.RFC3339)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("event %q: duplicate stage %q at %s",
				e.Title, s.Title, s.StartDate.UTC().Format(time.RFC3339))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// SortStages orders the stages ascending by start date, keeping source
// order for stages that share a start instant.
func (e *Event) SortStages() {
	sort.SliceStable(e.Stages, func(i, j int) bool {
		return e.Stages[i].StartDate.Before(e.Stages[j].StartDate)
	})
}

// SortEvents orders events ascending by start date, keeping relative order
// for events that share a start instant.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
}
