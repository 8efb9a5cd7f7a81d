package schedule

import (
	"time"

	"motorsportcal/internal/model"
)

// ConfirmPolicy controls event-level confirmation.
type ConfirmPolicy struct {
	// ByRecency treats an event whose end date has already passed as
	// settled regardless of detail completeness. Used by API-sourced
	// series.
	ByRecency bool
	// Now is the reference instant for the recency check. Zero means the
	// wall clock at classification time.
	Now time.Time
}

// ApplyOverrides updates stage confirmation from an external authoritative
// source, keyed by stage title. An explicit override always wins over the
// extraction hint.
func ApplyOverrides(event *model.Event, confirmed map[string]bool) {
	for i := range event.Stages {
		if v, ok := confirmed[event.Stages[i].Title]; ok {
			event.Stages[i].IsConfirmed = v
		}
	}
}

// ClassifyEvent assigns the event-level confirmation flag: confirmed only
// when the event has at least one stage and every stage is confirmed,
// subject to the policy's recency relaxation.
func ClassifyEvent(event *model.Event, policy ConfirmPolicy) {
	event.IsConfirmed = len(event.Stages) > 0 && allConfirmed(event.Stages)
	if event.IsConfirmed || !policy.ByRecency {
		return
	}
	now := policy.Now
	if now.IsZero() {
		now = time.Now()
	}
	if event.EndDate.Before(now) {
		event.IsConfirmed = true
	}
}

// ClassifyEvents runs ClassifyEvent over a whole sequence.
func ClassifyEvents(events []model.Event, policy ConfirmPolicy) {
	for i := range events {
		ClassifyEvent(&events[i], policy)
	}
}

func allConfirmed(stages []model.Stage) bool {
	for _, s := range stages {
		if !s.IsConfirmed {
			return false
		}
	}
	return true
}
