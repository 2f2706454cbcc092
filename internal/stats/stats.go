package stats

import (
	"errors"
	"sort"

	"csvstats/internal/model"
)

// ErrEmptyInput is returned when statistics are requested for an empty set.
// Validation guarantees at least one record, so seeing it means a caller bug.
var ErrEmptyInput = errors.New("stats: empty input")

// Median returns the median of values without modifying the slice.
// For an even count it is the mean of the two middle order statistics.
func Median(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, ErrEmptyInput
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 0 {
		lo, hi := sorted[n/2-1], sorted[n/2]
		return lo + (hi-lo)/2, nil
	}
	return sorted[n/2], nil
}

// Summarize computes the summary of a validated, non-empty record set.
func Summarize(fileName string, records []model.Record) (*model.Summary, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	first := records[0]
	minDate, maxDate := first.Date, first.Date
	minValue, maxValue := first.Value, first.Value
	var meanValue, meanExec float64
	values := make([]float64, 0, len(records))

	for i, r := range records {
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
		if r.Value < minValue {
			minValue = r.Value
		}
		if r.Value > maxValue {
			maxValue = r.Value
		}
		// Running means stay finite for values near math.MaxFloat64.
		k := float64(i + 1)
		meanValue += (r.Value - meanValue) / k
		meanExec += (r.ExecutionTime - meanExec) / k
		values = append(values, r.Value)
	}

	median, err := Median(values)
	if err != nil {
		return nil, err
	}

	avgValue := clamp(meanValue, minValue, maxValue)

	return &model.Summary{
		FileName:         fileName,
		DeltaSeconds:     maxDate.Sub(minDate).Seconds(),
		MinDate:          minDate.UTC(),
		AvgExecutionTime: meanExec,
		AvgValue:         avgValue,
		MedianValue:      median,
		MaxValue:         maxValue,
		MinValue:         minValue,
	}, nil
}

// clamp bounds v to [lo, hi]. Rounding can move a mean one ulp past the extremes.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
