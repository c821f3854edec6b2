package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no separator", "type: counter\nsource: current-file", 1},
		{"three hyphens", "type: counter\n---\ntype: streak", 2},
		{"long separator with trailing space", "a: 1\n------   \nb: 2\n---\nc: 3", 3},
		{"crlf", "a: 1\r\n---\r\nb: 2", 2},
		{"hyphens inside a value do not split", "pattern: a---b\nsource: current-file", 1},
		{"blank sections dropped", "a: 1\n---\n\n---\nb: 2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SplitSections(tt.text), tt.want)
		})
	}
}

func TestParseSection_KeysAndValues(t *testing.T) {
	d := ParseSection(`
# comment line
Type: counter
key_column: Activity
ValueColumn: Done
value: "✓"
label: 'Workouts'
pattern: "unmatched
no colon here
unknownKey: ignored
`)
	assert.Equal(t, "counter", d[fieldType])
	assert.Equal(t, "Activity", d[fieldKeyColumn])
	assert.Equal(t, "Done", d[fieldValueColumn])
	assert.Equal(t, "✓", d[fieldValue])
	assert.Equal(t, "Workouts", d[fieldLabel])
	assert.Equal(t, `"unmatched`, d[fieldPattern])
	assert.Len(t, d, 6)
}

func TestParseSection_ValueKeepsLaterColons(t *testing.T) {
	d := ParseSection("source: folder:Daily/2026\npattern: a:b")
	assert.Equal(t, "folder:Daily/2026", d[fieldSource])
	assert.Equal(t, "a:b", d[fieldPattern])
}

func TestParse_OrderIndependent(t *testing.T) {
	canonical := "type: counter\nsource: current-file\nkeyColumn: Activity\nkey: Exercise\nvalueColumn: Done\nvalue: ✓\nlabel: Gym"
	shuffled := "label: Gym\nvalue: ✓\nvalueColumn: Done\nkey: Exercise\nkeyColumn: Activity\nsource: current-file\ntype: counter"

	a, err := Parse(canonical)
	require.NoError(t, err)
	b, err := Parse(shuffled)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_SnakeAndCamelAliases(t *testing.T) {
	camel, err := Parse("type: counter\nsource: current-file\ntableTag: t\nkeyColumn: K\nvalueColumn: V\nvalue: any\ngoalColumn: G\ngridColumns: 3")
	require.NoError(t, err)
	snake, err := Parse("type: counter\nsource: current-file\ntable_tag: t\nkey_column: K\nvalue_column: V\nvalue: any\ngoal_column: G\ngrid_columns: 3")
	require.NoError(t, err)
	assert.Equal(t, camel, snake)
	assert.Equal(t, 3, camel[0].GridColumns)
}

func TestParse_Defaults(t *testing.T) {
	configs, err := Parse("type: counter\nsource: current-file\npattern: x")
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, AggregateCount, configs[0].Aggregate)
	assert.Equal(t, PeriodAllTime, configs[0].Period)
	assert.Equal(t, ModePattern, configs[0].Mode())

	configs, err = Parse("type: counter\nsource: current-file\npattern: x", WithDefaultPeriod(PeriodWeekly))
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, configs[0].Period)
}

func TestParse_GoalAndUseRegex(t *testing.T) {
	configs, err := Parse("type: progress_bar\nsource: current-file\npattern: x\ngoal: 12 pages\nuseRegex: TRUE")
	require.NoError(t, err)
	require.NotNil(t, configs[0].Goal)
	assert.Equal(t, 12, *configs[0].Goal)
	assert.True(t, configs[0].UseRegex)

	configs, err = Parse("type: progress_bar\nsource: current-file\npattern: x\ngoal: lots\nuse_regex: yes")
	require.NoError(t, err)
	assert.Nil(t, configs[0].Goal)
	assert.False(t, configs[0].HasGoal())
	assert.False(t, configs[0].UseRegex)
}

func TestParseBlock_BlockDefaults(t *testing.T) {
	block := ParseBlock(`layout: grid
gridColumns: 2
source: folder:Daily
tableTag: habits
---
type: streak
pattern: #run
---
type: counter
source: current-file
tableTag: other
keyColumn: A
valueColumn: B
value: any`)

	require.NoError(t, block.Err())
	assert.Equal(t, BlockConfig{Layout: "grid", GridColumns: 2, Source: "folder:Daily", TableTag: "habits"}, block.Defaults)

	configs := block.Configs()
	require.Len(t, configs, 2)
	assert.Equal(t, Folder("Daily"), configs[0].Source)
	assert.Equal(t, "habits", configs[0].TableTag)
	// explicit widget values win
	assert.Equal(t, CurrentFile(), configs[1].Source)
	assert.Equal(t, "other", configs[1].TableTag)
}

func TestParseBlock_FirstSectionKeepsWidgetLines(t *testing.T) {
	block := ParseBlock(`source: folder:Daily
type: counter
pattern: #a
layout: stacked
---
type: streak
pattern: #b`)

	require.NoError(t, block.Err())
	require.Len(t, block.Widgets, 2)
	assert.Equal(t, "folder:Daily", block.Defaults.Source)
	// layout after the first widget line belongs to the widget, not the block
	assert.Empty(t, block.Defaults.Layout)
	assert.Equal(t, "stacked", block.Widgets[0].Config.Layout)
	assert.Equal(t, Folder("Daily"), block.Widgets[1].Config.Source)
}

func TestParseBlock_SingleSectionHasNoBlockDefaults(t *testing.T) {
	block := ParseBlock("source: current-file\nlayout: grid\ntype: counter\npattern: x")
	require.NoError(t, block.Err())
	assert.True(t, block.Defaults.IsEmpty())
	require.Len(t, block.Widgets, 1)
	assert.Equal(t, "grid", block.Widgets[0].Config.Layout)
}

func TestParseBlock_InvalidWidgetDoesNotHideSiblings(t *testing.T) {
	block := ParseBlock("type: counter\nsource: current-file\npattern: x\n---\nsource: current-file\npattern: y")
	require.Len(t, block.Widgets, 2)
	assert.True(t, block.Widgets[0].OK())
	assert.False(t, block.Widgets[1].OK())
	assert.Len(t, block.Configs(), 1)
	assert.ErrorIs(t, block.Err(), ErrMissingType)
}

func TestParseBlock_Empty(t *testing.T) {
	block := ParseBlock("   \n")
	require.Len(t, block.Widgets, 1)
	assert.ErrorIs(t, block.Widgets[0].Err, ErrMissingType)
}

func TestValidate_Order(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"missing type", "source: nowhere", ErrMissingType},
		{"missing source", "type: counter\nkeyColumn: A", ErrMissingSource},
		{"malformed source", "type: counter\nsource: somewhere\npattern: x", ErrInvalidSource},
		{"empty folder path", "type: counter\nsource: folder:   \npattern: x", ErrInvalidSource},
		{"missing keyColumn", "type: counter\nsource: current-file\nvalueColumn: B\npattern: x", ErrMissingKeyColumn},
		{"missing valueColumn", "type: counter\nsource: current-file\nkeyColumn: A", ErrMissingValueColumn},
		{"missing value", "type: counter\nsource: current-file\nkeyColumn: A\nvalueColumn: B", ErrMissingValue},
		{"both modes", "type: counter\nsource: current-file\nkeyColumn: A\nvalueColumn: B\nvalue: any\npattern: x", ErrConflictingModes},
		{"no mode", "type: counter\nsource: current-file\nvalue: any", ErrNoMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSection(tt.text).Validate(PeriodAllTime)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.NotEmpty(t, cfgErr.Hint)
			assert.NotEmpty(t, cfgErr.Example)
		})
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		raw  string
		want Source
		ok   bool
	}{
		{"current-file", CurrentFile(), true},
		{" file: Notes/a.md ", File("Notes/a.md"), true},
		{"folder:Daily", Folder("Daily"), true},
		{"file:", Source{}, false},
		{"folder:", Source{}, false},
		{"Current-File", Source{}, false},
		{"notes/a.md", Source{}, false},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.raw)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrInvalidSource, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, got, mustParseSource(t, got.String()))
	}
}

func mustParseSource(t *testing.T, raw string) Source {
	t.Helper()
	s, err := ParseSource(raw)
	require.NoError(t, err)
	return s
}

func TestExamplesRoundTrip(t *testing.T) {
	for _, ex := range Examples() {
		t.Run(ex.Name, func(t *testing.T) {
			configs, err := Parse(ex.Snippet)
			require.NoError(t, err)
			require.NotEmpty(t, configs)
			for _, cfg := range configs {
				again, err := Revalidate(cfg)
				require.NoError(t, err)
				assert.Equal(t, cfg, again)
			}
		})
	}
}

func TestParseIntPrefix(t *testing.T) {
	n, ok := parseIntPrefix(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	n, ok = parseIntPrefix("-3x")
	assert.True(t, ok)
	assert.Equal(t, -3, n)

	_, ok = parseIntPrefix("x3")
	assert.False(t, ok)
	_, ok = parseIntPrefix("-")
	assert.False(t, ok)
}
