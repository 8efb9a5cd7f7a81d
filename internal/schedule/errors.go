package schedule

import (
	"fmt"
	"strings"
)

// MalformedSourceError reports a document that failed to parse at all.
// Fatal for the series being updated.
type MalformedSourceError struct {
	Source string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", e.Source, e.Err)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }

// ExtractionError reports a single source record missing a mandatory
// field. Recovered locally: the record is excluded from the session set.
type ExtractionError struct {
	Field  string
	Record string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("record %q: missing %s", e.Record, e.Field)
}

// DateResolutionError reports an unparseable time fragment. Recovered
// locally: the remaining stages of the affected event are discarded rather
// than emitting guessed times.
type DateResolutionError struct {
	Fragment string
}

func (e *DateResolutionError) Error() string {
	return fmt.Sprintf("unparseable time fragment %q", e.Fragment)
}

// DuplicateEventsError reports two events within one season sharing a
// title after normalization; their snapshot entries would be
// indistinguishable. Signals an upstream extraction defect and aborts the
// series pipeline.
type DuplicateEventsError struct {
	Title string
}

func (e *DuplicateEventsError) Error() string {
	return fmt.Sprintf("season has duplicate events titled %q", e.Title)
}

// DuplicateStagesError reports two stages within one event sharing a
// (title, start) pair. This signals an upstream extraction defect and
// aborts the series pipeline instead of silently deduplicating.
type DuplicateStagesError struct {
	Event  string
	Titles []string
}

func (e *DuplicateStagesError) Error() string {
	return fmt.Sprintf("event %q has duplicate stages: %s",
		e.Event, strings.Join(e.Titles, ", "))
}
