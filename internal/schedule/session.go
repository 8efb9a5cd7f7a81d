package schedule

import (
	"time"

	"motorsportcal/internal/model"
)

// Source tags the kind of document a raw session was extracted from. The
// grouper and classifier branch on it instead of duplicating per-source
// conditionals inline.
type Source int

const (
	// SourceFeed is a calendar-feed style source (iCal).
	SourceFeed Source = iota
	// SourceResults is a results-site style source (scraped HTML).
	SourceResults
	// SourceAPI is a JSON API style source.
	SourceAPI
)

func (s Source) String() string {
	switch s {
	case SourceFeed:
		return "feed"
	case SourceResults:
		return "results"
	case SourceAPI:
		return "api"
	}
	return "unknown"
}

// RawSession is one unstructured session record extracted from a source
// document. It lives only until grouping; nothing persists it.
type RawSession struct {
	// StageLabel is the stage title as extracted.
	StageLabel string
	// GroupingKey is the event identity before grouping.
	GroupingKey string
	// Start and End are the resolved absolute timestamps. End may be zero
	// for sources that only publish a start instant; the grouper
	// synthesizes it.
	Start time.Time
	End   time.Time
	// ConfirmationHint is false when the raw label carries a tentative
	// marker.
	ConfirmationHint bool
	// Ordinal is the source-defined ordering hint, used for stable
	// tie-breaks.
	Ordinal int
	// Significant marks headline-worthy stages.
	Significant bool
	// Type is the recognized session kind, if any.
	Type model.StageType
}

// TBCSuffix is the literal tentative-schedule marker appended to session
// labels by feed sources.
const TBCSuffix = "(TBC)"
