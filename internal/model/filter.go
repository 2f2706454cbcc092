package model

import "time"

// SummaryFilter enumerates the optional bounds accepted by the summary query.
// A nil field leaves that dimension unconstrained; all bounds are inclusive.
//
//   - FileName: exact match on Summary.FileName
//   - MinDate/MaxDate: range on Summary.MinDate
//   - MinAvgValue/MaxAvgValue: range on Summary.AvgValue
//   - MinAvgExecutionTime/MaxAvgExecutionTime: range on Summary.AvgExecutionTime
type SummaryFilter struct {
	FileName            *string
	MinDate             *time.Time
	MaxDate             *time.Time
	MinAvgValue         *float64
	MaxAvgValue         *float64
	MinAvgExecutionTime *float64
	MaxAvgExecutionTime *float64
}

// Match reports whether s satisfies every bound set on f.
func (f SummaryFilter) Match(s Summary) bool {
	if f.FileName != nil && s.FileName != *f.FileName {
		return false
	}
	if f.MinDate != nil && s.MinDate.Before(*f.MinDate) {
		return false
	}
	if f.MaxDate != nil && s.MinDate.After(*f.MaxDate) {
		return false
	}
	if f.MinAvgValue != nil && s.AvgValue < *f.MinAvgValue {
		return false
	}
	if f.MaxAvgValue != nil && s.AvgValue > *f.MaxAvgValue {
		return false
	}
	if f.MinAvgExecutionTime != nil && s.AvgExecutionTime < *f.MinAvgExecutionTime {
		return false
	}
	if f.MaxAvgExecutionTime != nil && s.AvgExecutionTime > *f.MaxAvgExecutionTime {
		return false
	}
	return true
}
