package tracker

import (
	"fmt"
	"strings"
)

// Validate checks the draft and converts it into a Config. Checks run in a
// fixed order so the first reported problem is deterministic:
//
//	type → source → source grammar → table columns/value → mode conflict → no mode
//
// An unset period becomes defaultPeriod; an unset aggregate becomes count.
func (d Draft) Validate(defaultPeriod Period) (Config, error) {
	if !d.has(fieldType) {
		return Config{}, newConfigError(ErrMissingType, fieldType, "")
	}
	if !d.has(fieldSource) {
		return Config{}, newConfigError(ErrMissingSource, fieldSource, "")
	}
	source, err := ParseSource(d[fieldSource])
	if err != nil {
		return Config{}, err
	}

	tableMode := d.has(fieldKeyColumn) || d.has(fieldValueColumn)
	patternMode := d.has(fieldPattern)

	if tableMode {
		if !d.has(fieldKeyColumn) {
			return Config{}, newConfigError(ErrMissingKeyColumn, fieldKeyColumn, "")
		}
		if !d.has(fieldValueColumn) {
			return Config{}, newConfigError(ErrMissingValueColumn, fieldValueColumn, "")
		}
		if !d.has(fieldValue) {
			return Config{}, newConfigError(ErrMissingValue, fieldValue, "")
		}
	}
	if tableMode && patternMode {
		return Config{}, newConfigError(ErrConflictingModes, fieldPattern, "")
	}
	if !tableMode && !patternMode {
		return Config{}, newConfigError(ErrNoMode, "", "")
	}

	cfg := Config{
		Type:        Type(normalizeEnum(d[fieldType])),
		Source:      source,
		TableTag:    d[fieldTableTag],
		KeyColumn:   d[fieldKeyColumn],
		Key:         d[fieldKey],
		ValueColumn: d[fieldValueColumn],
		Value:       d[fieldValue],
		Aggregate:   Aggregation(normalizeEnum(d[fieldAggregate])),
		Pattern:     d[fieldPattern],
		UseRegex:    strings.EqualFold(strings.TrimSpace(d[fieldUseRegex]), "true"),
		GoalColumn:  d[fieldGoalColumn],
		Period:      Period(normalizeEnum(d[fieldPeriod])),
		Label:       d[fieldLabel],
		Layout:      d[fieldLayout],
	}
	if goal, ok := parseIntPrefix(d[fieldGoal]); ok {
		cfg.Goal = &goal
	}
	if n, ok := parseIntPrefix(d[fieldGridColumns]); ok {
		cfg.GridColumns = n
	}
	if cfg.Period == "" {
		cfg.Period = defaultPeriod
	}
	if cfg.Aggregate == "" {
		cfg.Aggregate = AggregateCount
	}
	return cfg, nil
}

// Revalidate round-trips a Config through its directive form. It is used by
// callers that build configs by hand and want the same guarantees as parsed
// ones.
func Revalidate(cfg Config) (Config, error) {
	return cfg.Draft().Validate(cfg.Period)
}

// Draft renders the config back into directives.
func (c Config) Draft() Draft {
	d := Draft{
		fieldType:        string(c.Type),
		fieldSource:      c.Source.String(),
		fieldTableTag:    c.TableTag,
		fieldKeyColumn:   c.KeyColumn,
		fieldKey:         c.Key,
		fieldValueColumn: c.ValueColumn,
		fieldValue:       c.Value,
		fieldAggregate:   string(c.Aggregate),
		fieldPattern:     c.Pattern,
		fieldGoalColumn:  c.GoalColumn,
		fieldPeriod:      string(c.Period),
		fieldLabel:       c.Label,
		fieldLayout:      c.Layout,
	}
	if c.UseRegex {
		d[fieldUseRegex] = "true"
	}
	if c.Goal != nil {
		d[fieldGoal] = fmt.Sprintf("%d", *c.Goal)
	}
	if c.GridColumns != 0 {
		d[fieldGridColumns] = fmt.Sprintf("%d", c.GridColumns)
	}
	return d
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
