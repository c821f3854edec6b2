package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ============================================================================
// ENGINE TYPES — Tracker results
// ============================================================================
// TrackerData is recomputed on every scan and never persisted. Renderers
// dispatch on tracker.Type and otherwise treat it as opaque.
// ============================================================================

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

// TrackerData is the computed result of one tracker config.
type TrackerData struct {
	Count        float64     `json:"count"`
	Goal         *float64    `json:"goal,omitempty"` // static goal, else table-derived
	FilesScanned int         `json:"filesScanned"`
	DateRange    DateRange   `json:"dateRange"`
	Streak       int         `json:"streak"`
	NumericSum   *float64    `json:"numericSum,omitempty"` // table mode with value: numeric
	TimeSeries   []TimePoint `json:"timeSeries"`
}

// Percent returns Count as a percentage of Goal, clamped to [0, 100].
// Returns 0 when no positive goal is known.
func (d *TrackerData) Percent() float64 {
	if d == nil || d.Goal == nil || *d.Goal <= 0 {
		return 0
	}
	p := d.Count / *d.Goal * 100
	return math.Max(0, math.Min(100, p))
}

// DateRange bounds the dated files of a folder scan. Both ends are nil for
// single-document scans and when no file carried a date.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// IsZero returns true if the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// MarshalJSON writes the bounds as calendar dates.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start *string `json:"start"`
		End   *string `json:"end"`
	}{formatDatePtr(r.Start), formatDatePtr(r.End)})
}

// TimePoint is one dated file's value.
type TimePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MarshalJSON writes Date as a calendar date.
func (p TimePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{p.Date.Format(dateLayout), p.Value})
}

// UnmarshalJSON reads a point written by MarshalJSON.
func (p *TimePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("time point date: %w", err)
	}
	p.Date, p.Value = t, raw.Value
	return nil
}

// TableResult is the output of scanning one document's tables.
type TableResult struct {
	Values []float64
	Goal   *float64 // nil when no goal cell parsed
}

// PatternError reports a pattern that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func floatPtr(v float64) *float64 {
	return &v
}
