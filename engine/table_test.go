package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/notetrack/tracker"
)

func TestSplitCells_IndexStable(t *testing.T) {
	assert.Equal(t, []string{"A", "", "5"}, SplitCells("| A |  | 5 |"))
	assert.Equal(t, []string{"A", "B"}, SplitCells("A | B"))
	assert.Equal(t, []string{"", "x", ""}, SplitCells("| | x | |"))
	assert.Equal(t, []string{"only"}, SplitCells("  | only |  "))
}

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		spec   string
		want   float64
		wantOK bool
	}{
		{"numeric with spaces", " 10 ", tracker.ValueNumeric, 10, true},
		{"numeric with noise", "approx 2.5 km", tracker.ValueNumeric, 2.5, true},
		{"numeric negative", "-3", tracker.ValueNumeric, -3, true},
		{"numeric none", "N/A", tracker.ValueNumeric, 0, false},
		{"any filled", "yes", tracker.ValueAny, 1, true},
		{"any empty", "  ", tracker.ValueAny, 0, false},
		{"literal hit", "done ✓", "✓", 1, true},
		{"literal miss", "✗", "✓", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.cell, tt.spec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

const taggedTables = `# Review

<!-- table-tag: weekly -->
| Activity | Done | Goal |
|---|---|---|
| Exercise | ✓ | 5 |
| Reading |  | 10 |

<!-- table-tag: monthly -->
| Activity | Done | Goal |
|---|---|---|
| Exercise | ✓ | 20 |
| Exercise | ✓ | 20 |
| Exercise |  | 20 |
`

func TestExtractTable_TagFiltering(t *testing.T) {
	weekly := ExtractTable(taggedTables, TableQuery{
		Tag: "weekly", KeyColumn: "Activity", ValueColumn: "Done", Value: "✓",
	})
	assert.Equal(t, []float64{1}, weekly.Values)

	monthly := ExtractTable(taggedTables, TableQuery{
		Tag: "monthly", KeyColumn: "Activity", ValueColumn: "Done", Value: "✓",
	})
	assert.Equal(t, []float64{1, 1}, monthly.Values)

	untagged := ExtractTable(taggedTables, TableQuery{
		KeyColumn: "Activity", ValueColumn: "Done", Value: "✓",
	})
	assert.Equal(t, []float64{1, 1, 1}, untagged.Values)

	none := ExtractTable(taggedTables, TableQuery{
		Tag: "daily", KeyColumn: "Activity", ValueColumn: "Done", Value: "✓",
	})
	assert.Empty(t, none.Values)
	assert.Nil(t, none.Goal)
}

func TestExtractTable_TagMustBeWithinLookback(t *testing.T) {
	doc := "<!-- table-tag: weekly -->\n1\n2\n3\n4\n| A | B |\n|---|---|\n| x | 1 |"
	res := ExtractTable(doc, TableQuery{Tag: "weekly", KeyColumn: "A", ValueColumn: "B", Value: "any"})
	assert.Empty(t, res.Values)

	doc = "<!-- table-tag: weekly -->\n1\n2\n3\n| A | B |\n|---|---|\n| x | 1 |"
	res = ExtractTable(doc, TableQuery{Tag: "weekly", KeyColumn: "A", ValueColumn: "B", Value: "any"})
	assert.Equal(t, []float64{1}, res.Values)
}

func TestExtractTable_TagIsExact(t *testing.T) {
	doc := "<!-- table-tag: weekly-extra -->\n| A | B |\n|---|---|\n| x | 1 |"
	res := ExtractTable(doc, TableQuery{Tag: "weekly", KeyColumn: "A", ValueColumn: "B", Value: "any"})
	assert.Empty(t, res.Values)
}

func TestExtractTable_GoalAccumulates(t *testing.T) {
	res := ExtractTable(taggedTables, TableQuery{
		Tag: "weekly", KeyColumn: "Activity", ValueColumn: "Done", Value: "✓", GoalColumn: "goal",
	})
	require.NotNil(t, res.Goal)
	assert.Equal(t, 15.0, *res.Goal)

	// goal sums span every matching table of the document
	all := ExtractTable(taggedTables, TableQuery{
		KeyColumn: "Activity", Key: "Exercise", ValueColumn: "Done", Value: "✓", GoalColumn: "Goal",
	})
	require.NotNil(t, all.Goal)
	assert.Equal(t, 65.0, *all.Goal)
	assert.Equal(t, []float64{1, 1, 1}, all.Values)
}

func TestExtractTable_KeyFilter(t *testing.T) {
	doc := "| Activity | Minutes |\n|---|---|\n| Morning run | 30 |\n| Reading | 20 |\n| Evening run | 15 |"
	res := ExtractTable(doc, TableQuery{KeyColumn: "activity", Key: "run", ValueColumn: "MINUTES", Value: "numeric"})
	assert.Equal(t, []float64{30, 15}, res.Values)

	missingKeyCol := ExtractTable(doc, TableQuery{KeyColumn: "Nope", Key: "run", ValueColumn: "Minutes", Value: "numeric"})
	assert.Empty(t, missingKeyCol.Values)
}

func TestExtractTable_EmptyCellKeepsColumns(t *testing.T) {
	doc := "| Day | Note | Pages |\n|---|---|---|\n| Mon |  | 12 |\n| Tue | long | 8 |"
	res := ExtractTable(doc, TableQuery{KeyColumn: "Day", ValueColumn: "Pages", Value: "numeric"})
	assert.Equal(t, []float64{12, 8}, res.Values)
}

func TestExtractTable_NoSeparatorRow(t *testing.T) {
	doc := "| Day | Pages |\n| Mon | 12 |\n| Tue | 8 |"
	res := ExtractTable(doc, TableQuery{KeyColumn: "Day", ValueColumn: "Pages", Value: "numeric"})
	assert.Equal(t, []float64{12, 8}, res.Values)
}

func TestExtractTable_BlankLineEndsTable(t *testing.T) {
	doc := "| Day | Pages |\n|---|---|\n| Mon | 12 |\n\n| Other | Stuff |\n|---|---|\n| x | 99 |"
	res := ExtractTable(doc, TableQuery{KeyColumn: "Day", ValueColumn: "Pages", Value: "numeric"})
	assert.Equal(t, []float64{12}, res.Values)
}

func TestExtractTable_MissingValueColumn(t *testing.T) {
	doc := "| Day | Pages |\n|---|---|\n| Mon | 12 |"
	res := ExtractTable(doc, TableQuery{KeyColumn: "Day", ValueColumn: "Minutes", Value: "any"})
	assert.Empty(t, res.Values)
}

func TestParseFloatPrefix(t *testing.T) {
	v, ok := parseFloatPrefix(" 15 min")
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, ok = parseFloatPrefix(".5")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = parseFloatPrefix("about 3")
	assert.False(t, ok)
}
