package tracker

import (
	"errors"
	"fmt"
)

// ============================================================================
// TRACKER TYPES — Parsed directive set for one widget
// ============================================================================
// A Config is built once per render pass from block text and never mutated.
// Everything downstream (engine, render) reads it; nothing re-parses strings.
// ============================================================================

// Type selects the visualization a tracker feeds.
type Type string

const (
	TypeProgressBar Type = "progress_bar"
	TypeCounter     Type = "counter"
	TypePercentage  Type = "percentage"
	TypeStreak      Type = "streak"
	TypeLinePlot    Type = "line_plot"
)

// Aggregation reduces extracted values into one number.
type Aggregation string

const (
	AggregateCount   Aggregation = "count"
	AggregateSum     Aggregation = "sum"
	AggregateAverage Aggregation = "average"
	AggregateMax     Aggregation = "max"
	AggregateMin     Aggregation = "min"
)

// Period is the time window used to select dated documents in folder mode.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodAllTime Period = "all-time"
)

// Value specs with special meaning for table extraction. Any other value is
// matched literally against the cell.
const (
	ValueNumeric = "numeric"
	ValueAny     = "any"
)

// Mode is the extraction strategy of a validated config.
type Mode int

const (
	ModeTable Mode = iota + 1
	ModePattern
)

func (m Mode) String() string {
	switch m {
	case ModeTable:
		return "table"
	case ModePattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Config is a validated tracker configuration.
type Config struct {
	Type        Type        `json:"type"`
	Source      Source      `json:"source"`
	TableTag    string      `json:"tableTag,omitempty"`
	KeyColumn   string      `json:"keyColumn,omitempty"`
	Key         string      `json:"key,omitempty"`
	ValueColumn string      `json:"valueColumn,omitempty"`
	Value       string      `json:"value,omitempty"`
	Aggregate   Aggregation `json:"aggregate"`
	Pattern     string      `json:"pattern,omitempty"`
	UseRegex    bool        `json:"useRegex,omitempty"`
	Goal        *int        `json:"goal,omitempty"` // nil when absent or not an integer
	GoalColumn  string      `json:"goalColumn,omitempty"`
	Period      Period      `json:"period"`
	Label       string      `json:"label,omitempty"`
	Layout      string      `json:"layout,omitempty"`
	GridColumns int         `json:"gridColumns,omitempty"`
}

// Mode reports whether the config extracts from tables or patterns.
// Validation guarantees exactly one applies.
func (c Config) Mode() Mode {
	if c.Pattern != "" {
		return ModePattern
	}
	return ModeTable
}

// HasGoal reports whether a static goal was configured.
func (c Config) HasGoal() bool {
	return c.Goal != nil
}

// BlockConfig holds defaults shared by every widget of a multi-tracker block.
// Empty strings and zero mean unset.
type BlockConfig struct {
	Layout      string `json:"layout,omitempty"`
	GridColumns int    `json:"gridColumns,omitempty"`
	Source      string `json:"source,omitempty"`
	TableTag    string `json:"tableTag,omitempty"`
}

// IsEmpty returns true if no block default is set.
func (b BlockConfig) IsEmpty() bool {
	return b.Layout == "" && b.GridColumns == 0 && b.Source == "" && b.TableTag == ""
}

// Widget is one section of a block: either a valid Config or the error that
// prevented it.
type Widget struct {
	Index  int    `json:"index"`
	Config Config `json:"config"`
	Err    error  `json:"-"`
}

// OK returns true if the widget validated.
func (w Widget) OK() bool {
	return w.Err == nil
}

// Block is the parsed form of one tracker block.
type Block struct {
	Defaults BlockConfig `json:"defaults"`
	Widgets  []Widget    `json:"widgets"`
}

// Configs returns the valid widget configs in block order.
func (b *Block) Configs() []Config {
	configs := make([]Config, 0, len(b.Widgets))
	for _, w := range b.Widgets {
		if w.OK() {
			configs = append(configs, w.Config)
		}
	}
	return configs
}

// Err joins every widget error, or returns nil when all widgets validated.
func (b *Block) Err() error {
	var errs []error
	for _, w := range b.Widgets {
		if w.Err != nil {
			errs = append(errs, fmt.Errorf("widget %d: %w", w.Index+1, w.Err))
		}
	}
	return errors.Join(errs...)
}
