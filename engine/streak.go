package engine

import (
	"sort"
	"time"
)

// CalculateStreak counts consecutive calendar days with an entry, walking
// back from the day of now. A day without an entry ends the walk, so a
// streak not continued today is 0. Days are taken in now's location and
// dates after today are ignored.
func CalculateStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	loc := now.Location()

	seen := make(map[int64]bool, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := startOfDay(d.In(loc))
		if !seen[day.Unix()] {
			seen[day.Unix()] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	expected := startOfDay(now)
	streak := 0
	for _, day := range days {
		if day.After(expected) {
			continue
		}
		if day.Before(expected) {
			break
		}
		streak++
		y, m, d := expected.Date()
		expected = time.Date(y, m, d-1, 0, 0, 0, 0, loc)
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
