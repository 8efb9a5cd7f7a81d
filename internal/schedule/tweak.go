package schedule

import (
	"time"

	"motorsportcal/internal/model"
)

const (
	// MaxStageGap is the synthesized duration window for a stage whose
	// source only publishes a start instant.
	MaxStageGap = 3 * time.Hour
	// MinStageBuffer is the minimum synthesized stage duration, enforced
	// even when the next stage starts almost immediately.
	MinStageBuffer = 10 * time.Minute
)

// SynthesizeEndDates fills in end dates for stages that carry only a start
// instant. Stages must already be sorted by start date.
//
// A stage followed same-day within MaxStageGap ends one second before its
// successor, never earlier than MinStageBuffer after its own start. Any
// other stage, including the last of the event, ends MaxStageGap after it
// starts.
func SynthesizeEndDates(stages []model.Stage) {
	for i := range stages {
		start := stages[i].StartDate
		if i == len(stages)-1 {
			stages[i].EndDate = start.Add(MaxStageGap)
			continue
		}

		next := stages[i+1].StartDate
		if sameDay(start, next) && next.Sub(start) <= MaxStageGap {
			end := next.Add(-time.Second)
			if buffered := start.Add(MinStageBuffer); buffered.After(end) {
				end = buffered
			}
			stages[i].EndDate = end
			continue
		}

		end := start.Add(MaxStageGap)
		if sameDay(start, next) {
			if capped := next.Add(-time.Second); capped.Before(end) {
				end = capped
			}
		}
		stages[i].EndDate = end
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
