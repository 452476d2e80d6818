package recommender

import (
	"math"
	"sort"
)

// Series holds the aggregate statistics the report and the shutdown
// summary need over one metric's samples.
type Series struct {
	Min     int64
	Max     int64
	Average float64
	P95     float64
}

// Describe computes min/max/mean/p95 over a sample series. Returns the
// zero Series for empty input.
func Describe(values []int64) Series {
	if len(values) == 0 {
		return Series{}
	}

	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	return Series{
		Min:     int64(sorted[0]),
		Max:     int64(sorted[len(sorted)-1]),
		Average: mean(sorted),
		P95:     percentile(sorted, 95),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile computes the Nth percentile over sorted values with linear
// interpolation between ranks.
func percentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	n := float64(len(sortedValues))
	rank := (p / 100.0) * (n - 1)

	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sortedValues[lower]
	}

	fraction := rank - float64(lower)
	return sortedValues[lower] + (sortedValues[upper]-sortedValues[lower])*fraction
}
