package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// TABLE EXTRACTOR — Single-pass markdown table scan
// ============================================================================
// Pipeline per line:
//   1. Push the line into the lookback window (current + 4 preceding)
//   2. Non-table line → leave any table, reset column indices
//   3. First line of a table → tag check, then header → column indices
//   4. Separator row after the header is skipped
//   5. Data rows → key filter → value extraction, goal accumulation
// ============================================================================

const lookbackLines = 5

var (
	numericPattern     = regexp.MustCompile(`-?\d+(\.\d+)?`)
	floatPrefixPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// TableQuery selects what ExtractTable reads from a document.
type TableQuery struct {
	Tag         string // empty: every table
	KeyColumn   string
	Key         string // empty: every row
	ValueColumn string
	Value       string // "numeric", "any" or literal text
	GoalColumn  string // empty: no dynamic goal
}

// QueryFromConfig builds the table query of a table-mode config.
func QueryFromConfig(cfg tracker.Config) TableQuery {
	return TableQuery{
		Tag:         cfg.TableTag,
		KeyColumn:   cfg.KeyColumn,
		Key:         cfg.Key,
		ValueColumn: cfg.ValueColumn,
		Value:       cfg.Value,
		GoalColumn:  cfg.GoalColumn,
	}
}

// tableState is the scanner position relative to the current table.
type tableState int

const (
	stateOutside tableState = iota
	stateSkipped            // table rejected by the tag filter
	stateHeader             // header read, separator row may follow
	stateBody
)

// columns holds resolved header positions; -1 means not present.
type columns struct {
	key, value, goal int
}

// ExtractTable scans every markdown table in content and returns the values
// selected by q. The goal sum spans all tables of the document.
func ExtractTable(content string, q TableQuery) TableResult {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	marker := ""
	if q.Tag != "" {
		marker = "<!-- table-tag: " + q.Tag + " -->"
	}

	var (
		result   TableResult
		goalSum  float64
		goalSeen bool
		window   = make([]string, 0, lookbackLines)
		state    = stateOutside
		cols     columns
	)

	for _, line := range strings.Split(content, "\n") {
		if len(window) == lookbackLines {
			window = append(window[:0], window[1:]...)
		}
		window = append(window, line)

		if !isTableLine(line) {
			state = stateOutside
			cols = columns{}
			continue
		}

		switch state {
		case stateOutside:
			if marker != "" && !windowContains(window, marker) {
				state = stateSkipped
				continue
			}
			cols = resolveColumns(SplitCells(line), q)
			state = stateHeader
			continue

		case stateSkipped:
			continue

		case stateHeader:
			state = stateBody
			if strings.Contains(line, "---") {
				continue
			}
		}

		cells := SplitCells(line)
		if q.Key != "" {
			if cols.key < 0 || cols.key >= len(cells) || !strings.Contains(cells[cols.key], q.Key) {
				continue
			}
		}
		if v, ok := ExtractValue(cellAt(cells, cols.value), q.Value); ok {
			result.Values = append(result.Values, v)
		}
		if cols.goal >= 0 {
			if g, ok := parseFloatPrefix(cellAt(cells, cols.goal)); ok {
				goalSum += g
				goalSeen = true
			}
		}
	}

	if goalSeen {
		result.Goal = floatPtr(goalSum)
	}
	return result
}

// SplitCells splits a table row on '|'. Every piece is trimmed, the empty
// piece before a leading pipe and after a trailing pipe is dropped, and
// interior empty cells are kept so column indices stay aligned.
func SplitCells(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// ExtractValue converts a value cell according to spec. ok is false when the
// cell contributes nothing.
//
//	numeric: first (optionally negative) decimal number in the cell
//	any:     1 for any non-empty cell
//	literal: 1 when the cell contains the literal text
func ExtractValue(cell, spec string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	switch spec {
	case tracker.ValueNumeric:
		m := numericPattern.FindString(cell)
		if m == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case tracker.ValueAny:
		if cell == "" {
			return 0, false
		}
		return 1, true
	default:
		if strings.Contains(cell, spec) {
			return 1, true
		}
		return 0, false
	}
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func windowContains(window []string, marker string) bool {
	for _, l := range window {
		if strings.Contains(l, marker) {
			return true
		}
	}
	return false
}

func resolveColumns(header []string, q TableQuery) columns {
	return columns{
		key:   columnIndex(header, q.KeyColumn),
		value: columnIndex(header, q.ValueColumn),
		goal:  columnIndex(header, q.GoalColumn),
	}
}

// columnIndex finds name among header cells, case-insensitively.
func columnIndex(header []string, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for i, cell := range header {
		if strings.EqualFold(cell, name) {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// parseFloatPrefix reads the leading number of s ("15 min" → 15).
func parseFloatPrefix(s string) (float64, bool) {
	m := floatPrefixPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
