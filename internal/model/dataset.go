package model

import "time"

// Record is a single CSV row belonging to a dataset.
// Date is always stored in UTC.
type Record struct {
	Date          time.Time `json:"date"`
	ExecutionTime float64   `json:"executionTime" validate:"gte=0"`
	Value         float64   `json:"value" validate:"gte=0"`
}

// Dataset is the full set of records uploaded under one file name.
// FileName is the unique key; re-uploading replaces Records as a whole.
type Dataset struct {
	ID       int64    `json:"id"`
	FileName string   `json:"fileName"`
	Records  []Record `json:"records,omitempty"`
}

// Summary holds statistics derived from a dataset. There is exactly one per FileName.
type Summary struct {
	FileName         string    `json:"fileName"`
	DeltaSeconds     float64   `json:"deltaSeconds"`
	MinDate          time.Time `json:"minDate"`
	AvgExecutionTime float64   `json:"avgExecutionTime"`
	AvgValue         float64   `json:"avgValue"`
	MedianValue      float64   `json:"medianValue"`
	MaxValue         float64   `json:"maxValue"`
	MinValue         float64   `json:"minValue"`
}
