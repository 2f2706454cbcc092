package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"csvstats/internal/model"
)

// Delimiter separates fields in uploaded files.
const Delimiter = ';'

const (
	columnDate          = "date"
	columnExecutionTime = "executiontime"
	columnValue         = "value"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Decode reads semicolon separated records with a Date;ExecutionTime;Value header.
// Header names are matched case-insensitively and may appear in any order.
// Timestamps without a zone are taken as UTC.
func Decode(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DecodeError{Err: errors.New("file is empty, header Date;ExecutionTime;Value is required")}
	}
	if err != nil {
		return nil, csvError(err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRecord(fields, idx, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

type columns struct {
	date, executionTime, value int
}

func columnIndex(header []string) (columns, error) {
	idx := columns{date: -1, executionTime: -1, value: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch name {
		case columnDate:
			idx.date = i
		case columnExecutionTime:
			idx.executionTime = i
		case columnValue:
			idx.value = i
		}
	}

	var missing []string
	if idx.date < 0 {
		missing = append(missing, "Date")
	}
	if idx.executionTime < 0 {
		missing = append(missing, "ExecutionTime")
	}
	if idx.value < 0 {
		missing = append(missing, "Value")
	}
	if len(missing) > 0 {
		return idx, &DecodeError{Line: 1, Err: fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	return idx, nil
}

func parseRecord(fields []string, idx columns, line int) (model.Record, error) {
	get := func(i int, name string) (string, error) {
		if i >= len(fields) {
			return "", &DecodeError{Line: line, Column: name, Err: errors.New("field is missing")}
		}
		return strings.TrimSpace(fields[i]), nil
	}

	rawDate, err := get(idx.date, "Date")
	if err != nil {
		return model.Record{}, err
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return model.Record{}, &DecodeError{Line: line, Column: "Date", Err: err}
	}

	rawExec, err := get(idx.executionTime, "ExecutionTime")
	if err != nil {
		return model.Record{}, err
	}
	exec, err := parseFloat(rawExec)
	if err != nil {
		return model.Record{}, &DecodeError{Line: line, Column: "ExecutionTime", Err: err}
	}

	rawValue, err := get(idx.value, "Value")
	if err != nil {
		return model.Record{}, err
	}
	value, err := parseFloat(rawValue)
	if err != nil {
		return model.Record{}, &DecodeError{Line: line, Column: "Value", Err: err}
	}

	return model.Record{Date: date, ExecutionTime: exec, Value: value}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseFloat accepts a decimal comma when no dot is present.
func parseFloat(s string) (float64, error) {
	norm := s
	if !strings.Contains(norm, ".") {
		norm = strings.Replace(norm, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(norm, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DecodeError{Line: pe.Line, Err: pe.Err}
	}
	return &DecodeError{Err: err}
}
