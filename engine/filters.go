package engine

import (
	"regexp"
	"strings"
	"time"

	"github.com/spektr-org/notetrack/store"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// FILTERS — Filename dates and period selection
// ============================================================================
// all-time keeps every file, dated or not. Any other period keeps only files
// whose filename carries a date on/after the period start. Dashboards rely on
// that asymmetry.
// ============================================================================

// filenameDate is one accepted filename date form.
type filenameDate struct {
	pattern *regexp.Regexp
	layout  string
}

// Tried in order; the first match that is a real calendar date wins.
var filenameDates = []filenameDate{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`\d{8}`), "20060102"},
	{regexp.MustCompile(`\d{2}-\d{2}-\d{4}`), "02-01-2006"},
}

// ExtractDateFromFilename returns the calendar date embedded in name,
// interpreted in loc (UTC when nil).
func ExtractDateFromFilename(name string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, fd := range filenameDates {
		m := fd.pattern.FindString(name)
		if m == "" {
			continue
		}
		if t, err := time.ParseInLocation(fd.layout, m, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PeriodStart returns the first instant of period containing now.
// ok is false for all-time, which has no lower bound and no date
// requirement. Unrecognized periods return the zero time with ok true, so
// they keep every dated file.
func PeriodStart(period tracker.Period, now time.Time, weekStart time.Weekday) (start time.Time, ok bool) {
	y, m, d := now.Date()
	loc := now.Location()

	switch tracker.Period(strings.ToLower(string(period))) {
	case tracker.PeriodAllTime:
		return time.Time{}, false
	case tracker.PeriodDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	case tracker.PeriodWeekly:
		offset := (int(now.Weekday()) - int(weekStart) + 7) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc), true
	case tracker.PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), true
	case tracker.PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, true
	}
}

// FilterFilesByPeriod selects the entries that belong to period as of now.
// Dates come from each entry's basename.
func FilterFilesByPeriod(entries []store.Entry, period tracker.Period, now time.Time, weekStart time.Weekday) []store.Entry {
	start, bounded := PeriodStart(period, now, weekStart)
	if !bounded {
		out := make([]store.Entry, len(entries))
		copy(out, entries)
		return out
	}

	out := make([]store.Entry, 0, len(entries))
	for _, e := range entries {
		date, ok := ExtractDateFromFilename(e.Basename, now.Location())
		if !ok || date.Before(start) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ParseWeekday parses an English weekday name ("monday", "Sun").
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
