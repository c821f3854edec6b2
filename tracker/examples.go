package tracker

// Example is a documented tracker snippet.
type Example struct {
	Name        string
	Description string
	Snippet     string
}

var examples = []Example{
	{
		Name:        "habit-table",
		Description: "Count exercise rows ticked in this week's table",
		Snippet: `type: counter
source: current-file
tableTag: weekly
keyColumn: Activity
key: Exercise
valueColumn: Done
value: "✓"
label: Workouts this week`,
	},
	{
		Name:        "reading-progress",
		Description: "Sum pages read against a goal column",
		Snippet: `type: progress_bar
source: current-file
keyColumn: Book
valueColumn: Pages
value: numeric
aggregate: sum
goalColumn: Target
label: Pages read`,
	},
	{
		Name:        "task-percentage",
		Description: "Share of checked tasks in one file",
		Snippet: `type: percentage
source: file:Projects/Launch.md
pattern: - [x]
goal: 20
label: Launch checklist`,
	},
	{
		Name:        "journal-streak",
		Description: "Consecutive days with a workout tag in the daily notes folder",
		Snippet: `type: streak
source: folder:Daily
pattern: #workout
period: all-time
label: Workout streak`,
	},
	{
		Name:        "mood-plot",
		Description: "Average mood per daily note this month",
		Snippet: `type: line_plot
source: folder:Daily
table_tag: mood
key_column: Time
value_column: Mood
value: numeric
aggregate: average
period: monthly`,
	},
	{
		Name:        "regex-counter",
		Description: "Count ISO dates mentioned in a file",
		Snippet: `type: counter
source: current-file
pattern: \d{4}-\d{2}-\d{2}
useRegex: true`,
	},
	{
		Name:        "dashboard",
		Description: "Shared source and layout for several widgets",
		Snippet: `layout: grid
gridColumns: 2
source: folder:Daily
---
type: streak
pattern: #meditate
label: Meditation
---
type: counter
pattern: #meditate
period: weekly
goal: 7
label: This week`,
	},
}

// Examples returns the documented example snippets.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}
