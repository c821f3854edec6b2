package render

import (
	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a tracker's time series
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces a line chart of the time series, one point per dated
// file in filename order. Returns nil when there is nothing to plot.
func BuildChart(cfg tracker.Config, data *engine.TrackerData) *ChartConfig {
	if data == nil || len(data.TimeSeries) == 0 {
		return nil
	}

	title := LabelFor(cfg)
	config := &ChartConfig{
		ChartType:  "line",
		Title:      title,
		XAxis:      "Date",
		YAxis:      yAxisLabel(cfg),
		ShowLegend: false,
		ShowGrid:   true,
	}

	points := make([]ChartPoint, 0, len(data.TimeSeries))
	for _, p := range data.TimeSeries {
		points = append(points, ChartPoint{
			Label: p.Date.Format("2006-01-02"),
			Value: engine.RoundTo2(p.Value),
		})
	}
	config.Series = []ChartSeries{{Name: title, Data: points}}

	if data.Goal != nil {
		goal := make([]ChartPoint, len(points))
		for i, p := range points {
			goal[i] = ChartPoint{Label: p.Label, Value: engine.RoundTo2(*data.Goal)}
		}
		config.Series = append(config.Series, ChartSeries{Name: "Goal", Data: goal})
		config.ShowLegend = true
	}

	config.Colors = assignColors(len(config.Series))
	for i := range config.Series {
		config.Series[i].Color = config.Colors[i]
	}
	return config
}

// yAxisLabel names the per-file value: match count for patterns, the
// aggregate of the file's table values otherwise.
func yAxisLabel(cfg tracker.Config) string {
	if cfg.Mode() == tracker.ModePattern {
		return "Matches"
	}
	return engine.LabelForAggregation(cfg.Aggregate)
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
