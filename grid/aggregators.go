package grid

import (
	"math"
	"strings"
)

// ============================================================================
// AGGREGATORS — Cell value computation via RecordView
// ============================================================================
// A cell is the set of records sitting under both a row node and a column
// node. Its value is one of the aggregations below applied to a measure.
// ============================================================================

// Supported aggregation names. Unknown or empty names fall back to sum.
const (
	AggSum   = "sum"
	AggCount = "count"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

// IsValidAggregation reports whether agg names a supported aggregation.
func IsValidAggregation(agg string) bool {
	switch strings.ToLower(agg) {
	case AggSum, AggCount, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// Aggregate applies an aggregation to a measure across a view.
func Aggregate(view RecordView, measure string, aggregation string) float64 {
	switch strings.ToLower(aggregation) {
	case AggCount:
		return float64(view.Len())
	case AggAvg:
		return AvgMeasure(view, measure)
	case AggMin:
		return MinMeasure(view, measure)
	case AggMax:
		return MaxMeasure(view, measure)
	default:
		return SumMeasure(view, measure)
	}
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes average of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	if view.Len() == 0 {
		return 0
	}
	m := math.Inf(-1)
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); v > m {
			m = v
		}
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	if view.Len() == 0 {
		return 0
	}
	m := math.Inf(1)
	for i := 0; i < view.Len(); i++ {
		if v := view.Measure(i, measure); v < m {
			m = v
		}
	}
	return m
}

// intersect merges two ascending index lists.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
