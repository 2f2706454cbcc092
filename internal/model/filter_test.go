package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummaryFilter_Match(t *testing.T) {
	s := Summary{
		FileName:         "a.csv",
		MinDate:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		AvgValue:         5,
		AvgExecutionTime: 2,
	}
	name := "a.csv"
	other := "b.csv"
	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	exact := s.MinDate
	five, ten, one := 5.0, 10.0, 1.0

	tests := []struct {
		name   string
		filter SummaryFilter
		want   bool
	}{
		{name: "empty filter", filter: SummaryFilter{}, want: true},
		{name: "file name match", filter: SummaryFilter{FileName: &name}, want: true},
		{name: "file name mismatch", filter: SummaryFilter{FileName: &other}, want: false},
		{name: "date range", filter: SummaryFilter{MinDate: &before, MaxDate: &after}, want: true},
		{name: "date bounds inclusive", filter: SummaryFilter{MinDate: &exact, MaxDate: &exact}, want: true},
		{name: "min date after", filter: SummaryFilter{MinDate: &after}, want: false},
		{name: "max date before", filter: SummaryFilter{MaxDate: &before}, want: false},
		{name: "avg value inclusive", filter: SummaryFilter{MinAvgValue: &five, MaxAvgValue: &five}, want: true},
		{name: "avg value too low", filter: SummaryFilter{MinAvgValue: &ten}, want: false},
		{name: "avg value too high", filter: SummaryFilter{MaxAvgValue: &one}, want: false},
		{name: "exec time in range", filter: SummaryFilter{MinAvgExecutionTime: &one, MaxAvgExecutionTime: &five}, want: true},
		{name: "exec time too high", filter: SummaryFilter{MaxAvgExecutionTime: &one}, want: false},
		{name: "exec time too low", filter: SummaryFilter{MinAvgExecutionTime: &ten}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(s))
		})
	}
}
