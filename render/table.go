package render

import (
	"fmt"

	"github.com/spektr-org/notetrack/engine"
)

// BuildTable produces one summary row per view: label, type, value, goal,
// files scanned and streak. Failed widgets show their error in the value
// column.
func BuildTable(title string, views []View) *TableData {
	columns := []Column{
		{Key: "label", Label: "Tracker", Type: "text", Align: "left"},
		{Key: "type", Label: "Type", Type: "text", Align: "left"},
		{Key: "value", Label: "Value", Type: "number", Align: "right"},
		{Key: "goal", Label: "Goal", Type: "number", Align: "right"},
		{Key: "files", Label: "Files", Type: "number", Align: "right"},
		{Key: "streak", Label: "Streak", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		if v.Error != nil {
			rows = append(rows, []string{v.Label, "error", v.Error.Message, "", "", ""})
			continue
		}
		row := []string{v.Label, string(v.Type), "", "", "", ""}
		if d := v.Data; d != nil {
			row[2] = fmtNum(d.Count)
			if d.Goal != nil {
				row[3] = fmtNum(*d.Goal)
			}
			row[4] = fmt.Sprintf("%d", d.FilesScanned)
			row[5] = fmt.Sprintf("%d", d.Streak)
		}
		rows = append(rows, row)
	}

	return &TableData{Title: title, Columns: columns, Rows: rows}
}

// fmtNum prints whole numbers without decimals and fractions with two.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", engine.RoundTo2(v))
}
