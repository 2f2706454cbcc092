package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"csvstats/internal/model"
	"csvstats/internal/repository"
)

// insertChunkSize bounds the rows per INSERT so a statement stays under
// PostgreSQL's 65535 bind parameter limit.
const insertChunkSize = 1000

// DatasetPostgres is a PostgreSQL implementation of repository.DatasetRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DatasetPostgres struct {
	db *sql.DB
}

// NewDatasetPostgres creates a new DatasetPostgres repository.
func NewDatasetPostgres(db *sql.DB) *DatasetPostgres {
	return &DatasetPostgres{db: db}
}

var _ repository.DatasetRepository = (*DatasetPostgres)(nil)

// WithTx runs fn in a database transaction.
func (r *DatasetPostgres) WithTx(ctx context.Context, fn func(tx repository.DatasetTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&datasetTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LastRecords returns the newest records of a dataset.
func (r *DatasetPostgres) LastRecords(ctx context.Context, fileName string, limit int) ([]model.Record, error) {
	const q = `
		SELECT r.date, r.execution_time, r.value
		FROM records r
		JOIN datasets d ON d.id = r.dataset_id
		WHERE d.file_name = $1
		ORDER BY r.date DESC, r.id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, fileName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Record, 0, limit)
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.Date, &rec.ExecutionTime, &rec.Value); err != nil {
			return nil, err
		}
		rec.Date = rec.Date.UTC()
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindSummaries returns summaries matching every bound set on the filter.
func (r *DatasetPostgres) FindSummaries(ctx context.Context, f model.SummaryFilter) ([]model.Summary, error) {
	q, args := buildSummaryQuery(f)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Summary, 0)
	for rows.Next() {
		var s model.Summary
		if err := rows.Scan(
			&s.FileName,
			&s.DeltaSeconds,
			&s.MinDate,
			&s.AvgExecutionTime,
			&s.AvgValue,
			&s.MedianValue,
			&s.MaxValue,
			&s.MinValue,
		); err != nil {
			return nil, err
		}
		s.MinDate = s.MinDate.UTC()
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func buildSummaryQuery(f model.SummaryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if f.FileName != nil {
		add("file_name = ?", *f.FileName)
	}
	if f.MinDate != nil {
		add("min_date >= ?", *f.MinDate)
	}
	if f.MaxDate != nil {
		add("min_date <= ?", *f.MaxDate)
	}
	if f.MinAvgValue != nil {
		add("avg_value >= ?", *f.MinAvgValue)
	}
	if f.MaxAvgValue != nil {
		add("avg_value <= ?", *f.MaxAvgValue)
	}
	if f.MinAvgExecutionTime != nil {
		add("avg_execution_time >= ?", *f.MinAvgExecutionTime)
	}
	if f.MaxAvgExecutionTime != nil {
		add("avg_execution_time <= ?", *f.MaxAvgExecutionTime)
	}

	var b strings.Builder
	b.WriteString(`SELECT file_name, delta_seconds, min_date, avg_execution_time, avg_value, median_value, max_value, min_value FROM summaries`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY file_name")
	return b.String(), args
}

// datasetTx implements repository.DatasetTx on top of *sql.Tx.
type datasetTx struct {
	tx *sql.Tx
}

func (t *datasetTx) LockFile(ctx context.Context, fileName string) error {
	_, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, fileName)
	return err
}

func (t *datasetTx) FindDataset(ctx context.Context, fileName string) (int64, error) {
	const q = `SELECT id FROM datasets WHERE file_name = $1 FOR UPDATE`
	var id int64
	if err := t.tx.QueryRowContext(ctx, q, fileName).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *datasetTx) CreateDataset(ctx context.Context, fileName string) (int64, error) {
	const q = `INSERT INTO datasets (file_name) VALUES ($1) RETURNING id`
	var id int64
	if err := t.tx.QueryRowContext(ctx, q, fileName).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *datasetTx) DeleteRecords(ctx context.Context, datasetID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM records WHERE dataset_id = $1`, datasetID); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `UPDATE datasets SET updated_at = now() WHERE id = $1`, datasetID)
	return err
}

func (t *datasetTx) InsertRecords(ctx context.Context, datasetID int64, records []model.Record) error {
	for start := 0; start < len(records); start += insertChunkSize {
		end := min(start+insertChunkSize, len(records))
		q, args := buildRecordInsert(datasetID, records[start:end])
		if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func buildRecordInsert(datasetID int64, records []model.Record) (string, []any) {
	var b strings.Builder
	b.WriteString(`INSERT INTO records (dataset_id, date, execution_time, value) VALUES `)

	args := make([]any, 0, len(records)*4)
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, datasetID, rec.Date.UTC(), rec.ExecutionTime, rec.Value)
	}
	return b.String(), args
}

func (t *datasetTx) InsertSummary(ctx context.Context, s *model.Summary) error {
	const q = `
		INSERT INTO summaries (file_name, delta_seconds, min_date, avg_execution_time, avg_value, median_value, max_value, min_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.tx.ExecContext(ctx, q,
		s.FileName,
		s.DeltaSeconds,
		s.MinDate,
		s.AvgExecutionTime,
		s.AvgValue,
		s.MedianValue,
		s.MaxValue,
		s.MinValue,
	)
	return err
}

func (t *datasetTx) UpdateSummary(ctx context.Context, s *model.Summary) error {
	const q = `
		UPDATE summaries
		SET delta_seconds = $2, min_date = $3, avg_execution_time = $4, avg_value = $5,
		    median_value = $6, max_value = $7, min_value = $8, updated_at = now()
		WHERE file_name = $1
	`
	res, err := t.tx.ExecContext(ctx, q,
		s.FileName,
		s.DeltaSeconds,
		s.MinDate,
		s.AvgExecutionTime,
		s.AvgValue,
		s.MedianValue,
		s.MaxValue,
		s.MinValue,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
