package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"motorsportcal/internal/model"
)

func confirmableEvent(confirmed ...bool) model.Event {
	start := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC)
	ev := model.Event{Title: "Test Grand Prix"}
	for i, c := range confirmed {
		s := start.Add(time.Duration(i) * 24 * time.Hour)
		ev.Stages = append(ev.Stages, model.Stage{
			Title:       "Stage",
			StartDate:   s,
			EndDate:     s.Add(time.Hour),
			IsConfirmed: c,
		})
	}
	ev.Recompute()
	return ev
}

func TestClassifyEventCascade(t *testing.T) {
	ev := confirmableEvent(true, true, false)
	ClassifyEvent(&ev, ConfirmPolicy{})
	assert.False(t, ev.IsConfirmed)

	ev = confirmableEvent(true, true, true)
	ClassifyEvent(&ev, ConfirmPolicy{})
	assert.True(t, ev.IsConfirmed)
}

func TestClassifyEventWithoutStages(t *testing.T) {
	ev := model.Event{
		Title:     "Empty",
		StartDate: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	ClassifyEvent(&ev, ConfirmPolicy{})
	assert.False(t, ev.IsConfirmed)
}

func TestClassifyEventRecencyRelaxation(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := model.Event{
		Title:     "Elapsed Rally",
		StartDate: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	// Without the relaxation an empty event stays unconfirmed.
	ClassifyEvent(&ev, ConfirmPolicy{Now: now})
	assert.False(t, ev.IsConfirmed)

	// Elapsed events are settled regardless of detail completeness.
	ClassifyEvent(&ev, ConfirmPolicy{ByRecency: true, Now: now})
	assert.True(t, ev.IsConfirmed)

	// A future event gets no recency credit.
	future := ev
	future.EndDate = now.Add(24 * time.Hour)
	ClassifyEvent(&future, ConfirmPolicy{ByRecency: true, Now: now})
	assert.False(t, future.IsConfirmed)
}

func TestClassifyEventRecencyDefaultsToWallClock(t *testing.T) {
	ev := model.Event{
		Title:     "Long Finished Rally",
		StartDate: time.Date(2020, 3, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 3, 8, 0, 0, 0, 0, time.UTC),
	}

	// A zero reference instant falls back to the wall clock, so the flag
	// works for callers that never fill in Now.
	ClassifyEvent(&ev, ConfirmPolicy{ByRecency: true})
	assert.True(t, ev.IsConfirmed)
}

func TestApplyOverridesWinsOverHint(t *testing.T) {
	ev := model.Event{
		Title: "6 Hours of Somewhere",
		Stages: []model.Stage{
			{Title: "Race", IsConfirmed: true},
			{Title: "Free Practice 1", IsConfirmed: false},
		},
	}

	ApplyOverrides(&ev, map[string]bool{
		"Race":            false,
		"Free Practice 1": true,
	})

	assert.False(t, ev.Stages[0].IsConfirmed)
	assert.True(t, ev.Stages[1].IsConfirmed)
}

func TestApplyOverridesMissingKeyKeepsHint(t *testing.T) {
	ev := model.Event{
		Stages: []model.Stage{{Title: "Race", IsConfirmed: true}},
	}
	ApplyOverrides(&ev, map[string]bool{"Qualifying": false})
	assert.True(t, ev.Stages[0].IsConfirmed)
}
