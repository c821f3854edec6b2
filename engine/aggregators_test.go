package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spektr-org/notetrack/tracker"
)

func TestAggregate(t *testing.T) {
	values := []float64{0, 3, 0, 5}
	tests := []struct {
		method tracker.Aggregation
		want   float64
	}{
		{tracker.AggregateCount, 2},
		{tracker.AggregateSum, 8},
		{tracker.AggregateAverage, 2},
		{tracker.AggregateMax, 5},
		{tracker.AggregateMin, 0},
		{tracker.Aggregation("median"), 8},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(values, tt.method))
		})
	}
}

func TestAggregate_AverageDividesByLength(t *testing.T) {
	assert.Equal(t, 5.0, Aggregate([]float64{10, 0}, tracker.AggregateAverage))
}

func TestAggregate_Empty(t *testing.T) {
	for _, m := range []tracker.Aggregation{
		tracker.AggregateCount, tracker.AggregateSum, tracker.AggregateAverage,
		tracker.AggregateMax, tracker.AggregateMin,
	} {
		assert.Equal(t, 0.0, Aggregate(nil, m), m)
	}
}

func TestAggregate_NegativeExtremes(t *testing.T) {
	assert.Equal(t, -1.0, Aggregate([]float64{-4, -1}, tracker.AggregateMax))
	assert.Equal(t, 0.0, Aggregate([]float64{-4, -1}, tracker.AggregateCount))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "12.5", FormatNumber(12.5))
	assert.Equal(t, "1,234", FormatNumber(1234))
	assert.Equal(t, "1,234,567.89", FormatNumber(1234567.891))
	assert.Equal(t, "-3.25", FormatNumber(-3.25))
	assert.Equal(t, "0.33", FormatNumber(1.0/3))
}

func TestLabelForAggregation(t *testing.T) {
	assert.Equal(t, "Average", LabelForAggregation(tracker.AggregateAverage))
	assert.Equal(t, "Value", LabelForAggregation("median"))
}
