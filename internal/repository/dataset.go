package repository

import (
	"context"

	"csvstats/internal/model"
)

// DatasetRepository defines data access for datasets, records and summaries.
// Implementations hold no business logic, only persistence operations.
type DatasetRepository interface {
	// WithTx runs fn inside a single transaction. Every write made through tx is
	// committed if fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx DatasetTx) error) error

	// LastRecords returns up to limit records of the named dataset, newest first.
	// An unknown dataset yields an empty slice.
	LastRecords(ctx context.Context, fileName string, limit int) ([]model.Record, error)

	// FindSummaries returns every summary matching the filter, ordered by file name.
	FindSummaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error)
}

// DatasetTx is the set of writes available inside DatasetRepository.WithTx.
type DatasetTx interface {
	// LockFile blocks until the caller holds the write lock for fileName.
	// The lock is released when the transaction ends.
	LockFile(ctx context.Context, fileName string) error

	// FindDataset returns the dataset id for fileName, or sql.ErrNoRows.
	FindDataset(ctx context.Context, fileName string) (int64, error)

	// CreateDataset inserts an empty dataset and returns its id.
	CreateDataset(ctx context.Context, fileName string) (int64, error)

	// DeleteRecords removes every record of the dataset.
	DeleteRecords(ctx context.Context, datasetID int64) error

	// InsertRecords appends records to the dataset.
	InsertRecords(ctx context.Context, datasetID int64, records []model.Record) error

	// InsertSummary stores a new summary.
	InsertSummary(ctx context.Context, s *model.Summary) error

	// UpdateSummary overwrites the summary with the same FileName, or returns sql.ErrNoRows.
	UpdateSummary(ctx context.Context, s *model.Summary) error
}
