package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"csvstats/internal/model"
)

var queryDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseSummaryFilter reads the optional /resultFilter bounds. minDate and maxDate are
// accepted as aliases of minStart and maxStart.
func parseSummaryFilter(c *fiber.Ctx) (model.SummaryFilter, error) {
	var (
		f   model.SummaryFilter
		err error
	)

	if v := strings.TrimSpace(c.Query("filename")); v != "" {
		f.FileName = &v
	}
	if f.MinDate, err = queryDate(c, "minStart", "minDate"); err != nil {
		return f, err
	}
	if f.MaxDate, err = queryDate(c, "maxStart", "maxDate"); err != nil {
		return f, err
	}
	if f.MinAvgValue, err = queryFloat(c, "minAvgValue"); err != nil {
		return f, err
	}
	if f.MaxAvgValue, err = queryFloat(c, "maxAvgValue"); err != nil {
		return f, err
	}
	if f.MinAvgExecutionTime, err = queryFloat(c, "minAvgExecutionTime"); err != nil {
		return f, err
	}
	if f.MaxAvgExecutionTime, err = queryFloat(c, "maxAvgExecutionTime"); err != nil {
		return f, err
	}
	return f, nil
}

func queryDate(c *fiber.Ctx, keys ...string) (*time.Time, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		for _, layout := range queryDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				t = t.UTC()
				return &t, nil
			}
		}
		return nil, fmt.Errorf("invalid %s: %q is not a date", key, raw)
	}
	return nil, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s: %q is not a number", key, raw)
	}
	return &v, nil
}
