package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"csvstats/internal/model"
	"csvstats/internal/repository"
	"csvstats/internal/stats"
)

// upsert makes records the complete content of fileName and recomputes its summary.
// The caller holds the key lock for fileName.
// A known file loses all previous records; nothing is merged. The summary is computed
// before any write, so a failure leaves the stored dataset untouched.
func (s *datasetService) upsert(ctx context.Context, fileName string, records []model.Record) (created bool, err error) {
	ctx, span := tracer.Start(ctx, "DatasetService.upsert")
	defer span.End()

	summary, err := stats.Summarize(fileName, records)
	if err != nil {
		return false, fmt.Errorf("summarize %s: %w", fileName, err)
	}

	err = s.repo.WithTx(ctx, func(tx repository.DatasetTx) error {
		if err := tx.LockFile(ctx, fileName); err != nil {
			return fmt.Errorf("lock file: %w", err)
		}

		id, err := tx.FindDataset(ctx, fileName)
		if errors.Is(err, sql.ErrNoRows) {
			created = true
			return insertDataset(ctx, tx, summary, records)
		}
		if err != nil {
			return fmt.Errorf("find dataset: %w", err)
		}

		created = false
		return replaceDataset(ctx, tx, id, summary, records)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func insertDataset(ctx context.Context, tx repository.DatasetTx, summary *model.Summary, records []model.Record) error {
	id, err := tx.CreateDataset(ctx, summary.FileName)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := tx.InsertRecords(ctx, id, records); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}
	if err := tx.InsertSummary(ctx, summary); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func replaceDataset(ctx context.Context, tx repository.DatasetTx, id int64, summary *model.Summary, records []model.Record) error {
	if err := tx.DeleteRecords(ctx, id); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if err := tx.InsertRecords(ctx, id, records); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	err := tx.UpdateSummary(ctx, summary)
	if errors.Is(err, sql.ErrNoRows) {
		// Dataset without a summary; restore the 1:1 pairing.
		err = tx.InsertSummary(ctx, summary)
	}
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}
