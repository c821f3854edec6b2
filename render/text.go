package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// TEXT RENDERER — One line per widget, dispatched on tracker type
// ============================================================================
//   progress_bar → [#####-----] 5 / 10 (50%)
//   counter      → 5 / 10
//   percentage   → 50%
//   streak       → 3 days
//   line_plot    → ▁▃▅█ 4 points, 2026-10-16 → 2026-10-19
// ============================================================================

const barWidth = 20

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// Text writes every view, one widget per line. Error widgets add their hint
// and example beneath the message.
func Text(w io.Writer, views []View) error {
	for _, v := range views {
		if _, err := fmt.Fprintln(w, Line(v)); err != nil {
			return err
		}
		if v.Error == nil {
			continue
		}
		if v.Error.Hint != "" {
			if _, err := fmt.Fprintf(w, "  %s %s\n", gray("hint:"), v.Error.Hint); err != nil {
				return err
			}
		}
		if v.Error.Example != "" {
			for _, l := range strings.Split(v.Error.Example, "\n") {
				if _, err := fmt.Fprintf(w, "    %s\n", gray(l)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Line renders a single view as "Label: summary".
func Line(v View) string {
	if v.Error != nil {
		return fmt.Sprintf("%s: %s", bold(v.Label), red("❌ "+v.Error.Message))
	}
	return fmt.Sprintf("%s: %s", bold(v.Label), Summary(v.Type, v.Data))
}

// Summary renders data for a tracker type without the label.
func Summary(t tracker.Type, data *engine.TrackerData) string {
	if data == nil {
		return gray("no data")
	}

	switch t {
	case tracker.TypeProgressBar:
		if data.Goal == nil {
			return fmt.Sprintf("%s %s", engine.FormatNumber(data.Count), gray("(no goal)"))
		}
		pct := data.Percent()
		filled := int(math.Round(pct / 100 * barWidth))
		bar := green(strings.Repeat("#", filled)) + strings.Repeat("-", barWidth-filled)
		return fmt.Sprintf("[%s] %s / %s (%s%%)", bar,
			engine.FormatNumber(data.Count), engine.FormatNumber(*data.Goal), engine.FormatNumber(pct))

	case tracker.TypePercentage:
		if data.Goal == nil {
			return fmt.Sprintf("%s %s", engine.FormatNumber(data.Count), gray("(no goal)"))
		}
		return engine.FormatNumber(data.Percent()) + "%"

	case tracker.TypeStreak:
		if data.Streak == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", data.Streak)

	case tracker.TypeLinePlot:
		n := len(data.TimeSeries)
		if n == 0 {
			return gray("no dated files")
		}
		first := data.TimeSeries[0].Date.Format("2006-01-02")
		last := data.TimeSeries[n-1].Date.Format("2006-01-02")
		noun := "points"
		if n == 1 {
			noun = "point"
		}
		return fmt.Sprintf("%s %d %s, %s → %s", Sparkline(data.TimeSeries), n, noun, first, last)

	default:
		if data.Goal != nil {
			return fmt.Sprintf("%s / %s", engine.FormatNumber(data.Count), engine.FormatNumber(*data.Goal))
		}
		return engine.FormatNumber(data.Count)
	}
}

// Sparkline draws values scaled between their minimum and maximum.
func Sparkline(points []engine.TimePoint) string {
	if len(points) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	var b strings.Builder
	for _, p := range points {
		i := 0
		if hi > lo {
			i = int(math.Round((p.Value - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		b.WriteRune(sparkBlocks[i])
	}
	return b.String()
}
