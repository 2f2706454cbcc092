package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records per-file ingestion outcomes.
type IngestMetrics struct {
	files    *prometheus.CounterVec
	rows     prometheus.Histogram
	duration prometheus.Histogram
}

// NewIngestMetrics creates the ingestion collectors and registers them on reg.
func NewIngestMetrics(reg prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvstats_files_processed_total",
				Help: "Uploaded files processed, by outcome.",
			},
			[]string{"outcome"},
		),
		rows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csvstats_file_rows",
			Help:    "Number of records in successfully stored files.",
			Buckets: []float64{1, 10, 100, 1000, 5000, 10000},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csvstats_file_processing_seconds",
			Help:    "Time spent decoding, validating and storing one file.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.files, m.rows, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *IngestMetrics) observe(outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
	if outcome == outcomeSuccess {
		m.rows.Observe(float64(rows))
	}
}
