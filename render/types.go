// Package render turns computed trackers into text, JSON and CSV.
// It dispatches on tracker.Type and treats engine.TrackerData as opaque
// otherwise.
package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// RENDER TYPES — Render-ready widgets
// ============================================================================

// View is one render-ready widget. Exactly one of Data or Error is set.
type View struct {
	Target  string              `json:"target,omitempty"`
	Label   string              `json:"label"`
	Type    tracker.Type        `json:"type,omitempty"`
	Config  *tracker.Config     `json:"config,omitempty"`
	Data    *engine.TrackerData `json:"data,omitempty"`
	Percent *float64            `json:"percent,omitempty"` // progress_bar and percentage
	Chart   *ChartConfig        `json:"chartConfig,omitempty"`
	Error   *ErrorView          `json:"error,omitempty"`
}

// ErrorView is a widget that failed to parse or compute.
type ErrorView struct {
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Example string `json:"example,omitempty"`
}

// NewView builds the view of a computed tracker.
func NewView(target string, cfg tracker.Config, data *engine.TrackerData) View {
	v := View{
		Target: target,
		Label:  LabelFor(cfg),
		Type:   cfg.Type,
		Config: &cfg,
		Data:   data,
	}
	if data == nil {
		return v
	}
	switch cfg.Type {
	case tracker.TypeProgressBar, tracker.TypePercentage:
		p := engine.RoundTo2(data.Percent())
		v.Percent = &p
	case tracker.TypeLinePlot:
		v.Chart = BuildChart(cfg, data)
	}
	return v
}

// NewErrorView builds the view of a failed widget. Config errors carry
// their remediation hint and example.
func NewErrorView(target, label string, err error) View {
	ev := &ErrorView{Message: err.Error()}
	var cfgErr *tracker.ConfigError
	if errors.As(err, &cfgErr) {
		ev.Hint = cfgErr.Hint
		ev.Example = cfgErr.Example
	}
	if label == "" {
		label = "Tracker"
	}
	return View{Target: target, Label: label, Error: ev}
}

// ViewsFromBlock pairs each widget of a parsed block with its result.
// compute is called for valid widgets only.
func ViewsFromBlock(prefix string, block *tracker.Block, compute func(tracker.Config) (*engine.TrackerData, error)) []View {
	views := make([]View, 0, len(block.Widgets))
	for _, w := range block.Widgets {
		target := TargetID(prefix, w.Index)
		if !w.OK() {
			views = append(views, NewErrorView(target, "", w.Err))
			continue
		}
		data, err := compute(w.Config)
		if err != nil {
			views = append(views, NewErrorView(target, LabelFor(w.Config), err))
			continue
		}
		views = append(views, NewView(target, w.Config, data))
	}
	return views
}

// TargetID names widget i of the block identified by prefix.
func TargetID(prefix string, i int) string {
	return prefix + "#" + strconv.Itoa(i+1)
}

// LabelFor returns the configured label, or a title for the tracker type.
func LabelFor(cfg tracker.Config) string {
	if cfg.Label != "" {
		return cfg.Label
	}
	words := strings.Split(string(cfg.Type), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	if title := strings.Join(words, " "); title != "" {
		return title
	}
	return "Tracker"
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is a summary table of several widgets.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Headers returns the column labels.
func (t *TableData) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	return headers
}
