// Package merge combines a freshly computed event sequence with the
// previously persisted snapshot so history already elapsed or confirmed is
// never regressed by a noisier re-fetch.
package merge

import (
	"bytes"
	"time"

	"motorsportcal/internal/model"
)

// Strategy selects the merge algorithm.
type Strategy string

const (
	// StrategyNotEnded is the canonical behavior: keep the previous
	// snapshot's leading run of already-ended events and replace
	// everything from the first not-yet-ended event with the fresh data.
	StrategyNotEnded Strategy = "not-ended"
	// StrategyMissedEvents reproduces the older feed provider generation:
	// keep previous events starting before the fresh sequence and not
	// re-listed in it, then append the full fresh sequence.
	StrategyMissedEvents Strategy = "missed-events"
)

// Merge combines previous and fresh according to the strategy. A nil
// previous snapshot (first run) returns fresh as-is.
func Merge(previous, fresh []model.Event, strategy Strategy, now time.Time) []model.Event {
	if previous == nil {
		return fresh
	}
	if strategy == StrategyMissedEvents {
		return missedEvents(previous, fresh)
	}
	return notEnded(previous, fresh, now)
}

func notEnded(previous, fresh []model.Event, now time.Time) []model.Event {
	// Longest leading run of previous events that have already ended.
	retained := 0
	for _, ev := range previous {
		if !ev.EndDate.Before(now) {
			break
		}
		retained++
	}

	// Leading fresh events that already ended are assumed represented by
	// the retained prefix.
	tail := fresh
	for len(tail) > 0 && tail[0].EndDate.Before(now) {
		tail = tail[1:]
	}

	merged := make([]model.Event, 0, retained+len(tail))
	merged = append(merged, previous[:retained]...)
	merged = append(merged, tail...)
	return merged
}

func missedEvents(previous, fresh []model.Event) []model.Event {
	if len(fresh) == 0 {
		return fresh
	}

	freshTitles := make(map[string]struct{}, len(fresh))
	for _, ev := range fresh {
		freshTitles[ev.Title] = struct{}{}
	}

	firstStart := fresh[0].StartDate
	merged := make([]model.Event, 0, len(previous)+len(fresh))
	for _, ev := range previous {
		if !ev.StartDate.Before(firstStart) {
			break
		}
		if _, relisted := freshTitles[ev.Title]; relisted {
			continue
		}
		merged = append(merged, ev)
	}
	return append(merged, fresh...)
}

// Changed reports whether the merged sequence differs from the previously
// persisted serialized form. The comparison is byte-for-byte against the
// canonical encoding, which is what makes unchanged runs cheap to detect.
func Changed(previousRaw []byte, merged []model.Event) (bool, []byte, error) {
	data, err := model.EncodeSnapshot(merged)
	if err != nil {
		return false, nil, err
	}
	return !bytes.Equal(data, previousRaw), data, nil
}
