package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// AGGREGATORS — Reduce extracted values to one number
// ============================================================================
// count   → values strictly greater than zero ("done" entries)
// sum     → arithmetic total
// average → total / number of values (zero entries included)
// max/min → extremal value
// unknown → sum
// ============================================================================

// Aggregate reduces values with method. Empty input yields 0.
func Aggregate(values []float64, method tracker.Aggregation) float64 {
	if len(values) == 0 {
		return 0
	}

	switch method {
	case tracker.AggregateCount:
		return CountPositive(values)
	case tracker.AggregateSum:
		return Sum(values)
	case tracker.AggregateAverage:
		return Sum(values) / float64(len(values))
	case tracker.AggregateMax:
		return Max(values)
	case tracker.AggregateMin:
		return Min(values)
	default:
		return Sum(values)
	}
}

// CountPositive returns how many values are strictly greater than zero.
func CountPositive(values []float64) float64 {
	var n float64
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}

// Sum returns the arithmetic total.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Max returns the largest value, or 0 for no values.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest value, or 0 for no values.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatNumber formats v with comma separators and at most two decimals,
// dropping a zero fraction ("1,234", "12.5").
func FormatNumber(v float64) string {
	v = RoundTo2(v)
	negative := v < 0
	if negative {
		v = -v
	}

	intPart := int64(v)
	frac := v - float64(intPart)
	s := FormatInt(intPart)
	if frac > 0 {
		if dec := strings.TrimRight(fmt.Sprintf("%.2f", frac)[1:], "0"); dec != "." {
			s += dec
		}
	}
	if negative && s != "0" {
		s = "-" + s
	}
	return s
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// LabelForAggregation returns a human-readable label for a method.
func LabelForAggregation(method tracker.Aggregation) string {
	switch method {
	case tracker.AggregateSum:
		return "Total"
	case tracker.AggregateCount:
		return "Count"
	case tracker.AggregateAverage:
		return "Average"
	case tracker.AggregateMax:
		return "Maximum"
	case tracker.AggregateMin:
		return "Minimum"
	default:
		return "Value"
	}
}
