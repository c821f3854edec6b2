package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// ============================================================================
// MACHINE OUTPUT — JSON and Sheets-ready CSV
// ============================================================================

// JSON writes v followed by a newline; pretty indents with two spaces.
func JSON(w io.Writer, v any, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// CSV writes the summary table of views.
func CSV(w io.Writer, views []View) error {
	table := BuildTable("", views)
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// TimeSeriesCSV writes one row per time-series point of every view:
// tracker label, date, value.
func TimeSeriesCSV(w io.Writer, views []View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Tracker", "Date", "Value"}); err != nil {
		return err
	}
	for _, v := range views {
		if v.Data == nil {
			continue
		}
		for _, p := range v.Data.TimeSeries {
			if err := cw.Write([]string{v.Label, p.Date.Format("2006-01-02"), fmtNum(p.Value)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
