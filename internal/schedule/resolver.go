package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// fragmentPattern matches the time fragments published by results-site
// sources: "HH:MM", optionally followed by "DD. MM." and/or a literal
// "UTC" marker.
var fragmentPattern = regexp.MustCompile(
	`^\s*(\d{1,2}):(\d{2})(?:\s+(\d{1,2})\.\s*(\d{1,2})\.)?(?:\s+(UTC))?\s*$`)

// farPast is the cursor sentinel used before any date has been resolved
// for the current event.
var farPast = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateResolver resolves partial textual time fragments to absolute UTC
// timestamps. Later fragments within an event often omit the date and
// repeat only a time of day, so the resolver carries the last fully
// resolved calendar date as a cursor across calls.
type DateResolver struct {
	year int
	zone *time.Location

	cursor time.Time
	prev   time.Time
}

// NewDateResolver creates a resolver for the given target year. The zone
// applies to fragments without an explicit UTC marker; nil means UTC.
func NewDateResolver(year int, zone *time.Location) *DateResolver {
	if zone == nil {
		zone = time.UTC
	}
	r := &DateResolver{year: year, zone: zone}
	r.Reset()
	return r
}

// Reset clears the cursor state. Call it at the start of each event.
func (r *DateResolver) Reset() {
	r.cursor = farPast
	r.prev = time.Time{}
}

// Resolve turns one fragment into an absolute UTC timestamp. A fragment
// carrying a day and month overrides the cursor date using the target
// year. If the resolved instant precedes the previous stage's start (an
// out-of-order listing in the source) it is clamped to that start.
func (r *DateResolver) Resolve(fragment string) (time.Time, error) {
	m := fragmentPattern.FindStringSubmatch(fragment)
	if m == nil {
		return time.Time{}, &DateResolutionError{Fragment: fragment}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, &DateResolutionError{Fragment: fragment}
	}

	zone := r.zone
	if m[5] != "" {
		zone = time.UTC
	}

	if m[3] != "" {
		day, _ := strconv.Atoi(m[3])
		month, _ := strconv.Atoi(m[4])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			return time.Time{}, &DateResolutionError{Fragment: fragment}
		}
		r.cursor = time.Date(r.year, time.Month(month), day, 0, 0, 0, 0, zone)
	}

	cursor := r.cursor.In(zone)
	t := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), hour, minute, 0, 0, zone).UTC()

	if !r.prev.IsZero() && t.Before(r.prev) {
		t = r.prev
	}
	r.prev = t
	r.cursor = t.In(zone)

	return t, nil
}

// DetectZone scans script/config text for an IANA zone declaration such as
// timezone: "Europe/Warsaw". It returns nil when no valid zone is named,
// in which case times default to UTC.
func DetectZone(text string) *time.Location {
	m := zonePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := strings.TrimSpace(m[1])
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	return loc
}

var zonePattern = regexp.MustCompile(
	`(?i)time[_-]?zone["']?\s*[:=]\s*["']([A-Za-z]+/[A-Za-z_\-]+)["']`)
