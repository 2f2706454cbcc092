package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"csvstats/internal/model"
)

// Row count bounds for a single file, inclusive.
const (
	MinRows = 1
	MaxRows = 10000
)

// EarliestDate is the lower bound for record dates.
var EarliestDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Value":         "value must not be negative",
	"ExecutionTime": "execution time must not be negative",
}

// Today returns the start of the UTC day containing now.
func Today(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour)
}

// Validate checks the row count and every record against the domain constraints.
// It returns *RowCountError or *ValidationError; all record violations are reported.
// today is the latest accepted date, normally Today(time.Now()).
func Validate(records []model.Record, today time.Time) error {
	if n := len(records); n < MinRows || n > MaxRows {
		return &RowCountError{Count: n}
	}

	var msgs []string
	for i, r := range records {
		row := i + 1

		d := r.Date.UTC()
		if d.Before(EarliestDate) || d.After(today) {
			msgs = append(msgs, fmt.Sprintf("row %d: date %s must be between %s and %s",
				row, d.Format(time.RFC3339), EarliestDate.Format(time.DateOnly), today.Format(time.DateOnly)))
		}

		if err := validate.Struct(r); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				msgs = append(msgs, fmt.Sprintf("row %d: %v", row, err))
				continue
			}
			for _, fe := range verrs {
				msg, ok := fieldMessages[fe.Field()]
				if !ok {
					msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
				}
				msgs = append(msgs, fmt.Sprintf("row %d: %s", row, msg))
			}
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
