package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Snapshot files must serialize byte-identical across runs when nothing
// changed: keys in alphabetical order, two-space indentation and ISO-8601
// UTC timestamps at second precision. Change detection compares raw bytes,
// so any drift here shows up as a phantom update.

const dateLayout = "2006-01-02T15:04:05Z"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// stageJSON mirrors Stage with fields in alphabetical key order.
type stageJSON struct {
	EndDate       string    `json:"endDate"`
	IsConfirmed   bool      `json:"isConfirmed"`
	IsSignificant bool      `json:"isSignificant"`
	StartDate     string    `json:"startDate"`
	Title         string    `json:"title"`
	Type          StageType `json:"type,omitempty"`
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(stageJSON{
		EndDate:       formatDate(s.EndDate),
		IsConfirmed:   s.IsConfirmed,
		IsSignificant: s.IsSignificant,
		StartDate:     formatDate(s.StartDate),
		Title:         s.Title,
		Type:          s.Type,
	})
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw stageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseDate(raw.StartDate)
	if err != nil {
		return fmt.Errorf("stage %q: %w", raw.Title, err)
	}
	end, err := parseDate(raw.EndDate)
	if err != nil {
		return fmt.Errorf("stage %q: %w", raw.Title, err)
	}
	*s = Stage{
		Title:         raw.Title,
		StartDate:     start,
		EndDate:       end,
		IsSignificant: raw.IsSignificant,
		IsConfirmed:   raw.IsConfirmed,
		Type:          raw.Type,
	}
	return nil
}

// eventJSON mirrors Event with fields in alphabetical key order.
type eventJSON struct {
	EndDate     string  `json:"endDate"`
	IsConfirmed bool    `json:"isConfirmed"`
	Stages      []Stage `json:"stages"`
	StartDate   string  `json:"startDate"`
	Title       string  `json:"title"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	stages := e.Stages
	if stages == nil {
		stages = []Stage{}
	}
	return json.Marshal(eventJSON{
		EndDate:     formatDate(e.EndDate),
		IsConfirmed: e.IsConfirmed,
		Stages:      stages,
		StartDate:   formatDate(e.StartDate),
		Title:       e.Title,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseDate(raw.StartDate)
	if err != nil {
		return fmt.Errorf("event %q: %w", raw.Title, err)
	}
	end, err := parseDate(raw.EndDate)
	if err != nil {
		return fmt.Errorf("event %q: %w", raw.Title, err)
	}
	*e = Event{
		Title:       raw.Title,
		StartDate:   start,
		EndDate:     end,
		Stages:      raw.Stages,
		IsConfirmed: raw.IsConfirmed,
	}
	return nil
}

// EncodeSnapshot serializes a year's event sequence in canonical form.
func EncodeSnapshot(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a snapshot file produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Ledger records when each series+year snapshot last changed. Keys are
// "series:year" composites; legacy entries use the bare series name.
type Ledger struct {
	Updates map[string]time.Time
}

// NewLedger returns a ledger with every known series stamped at now.
func NewLedger(now time.Time) *Ledger {
	l := &Ledger{Updates: make(map[string]time.Time)}
	for _, s := range AllSeries() {
		l.Updates[string(s)] = now
	}
	return l
}

// LedgerKey builds the composite key for one series and year.
func LedgerKey(series Series, year int) string {
	return string(series) + ":" + strconv.Itoa(year)
}

// Touch records a change for the given series and year.
func (l *Ledger) Touch(series Series, year int, now time.Time) {
	if l.Updates == nil {
		l.Updates = make(map[string]time.Time)
	}
	l.Updates[LedgerKey(series, year)] = now
}

type ledgerJSON struct {
	Updates map[string]string `json:"updates"`
}

func (l Ledger) MarshalJSON() ([]byte, error) {
	raw := ledgerJSON{Updates: make(map[string]string, len(l.Updates))}
	for key, t := range l.Updates {
		raw.Updates[key] = formatDate(t)
	}
	// encoding/json sorts map keys, keeping the ledger canonical too.
	return json.Marshal(raw)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var raw ledgerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Updates = make(map[string]time.Time, len(raw.Updates))
	for key, value := range raw.Updates {
		series := Series(key)
		if i := strings.IndexByte(key, ':'); i >= 0 {
			series = Series(key[:i])
			if _, err := strconv.Atoi(key[i+1:]); err != nil {
				continue
			}
		}
		// Unknown series keys are ignored on read, not errors.
		if !KnownSeries(series) {
			continue
		}
		t, err := parseDate(value)
		if err != nil {
			continue
		}
		l.Updates[key] = t
	}
	return nil
}

// EncodeLedger serializes the ledger in canonical form.
func EncodeLedger(l *Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeLedger parses a ledger file produced by EncodeLedger.
func DecodeLedger(data []byte) (*Ledger, error) {
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
