package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_datasets",
		SQL: `CREATE TABLE IF NOT EXISTS datasets (
  id         BIGSERIAL   PRIMARY KEY,
  file_name  TEXT        NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_records",
		SQL: `CREATE TABLE IF NOT EXISTS records (
  id             BIGSERIAL        PRIMARY KEY,
  dataset_id     BIGINT           NOT NULL REFERENCES datasets (id) ON DELETE CASCADE,
  date           TIMESTAMPTZ      NOT NULL,
  execution_time DOUBLE PRECISION NOT NULL CHECK (execution_time >= 0),
  value          DOUBLE PRECISION NOT NULL CHECK (value >= 0)
);`,
	},
	{
		Name: "create_index_records_dataset_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_dataset_date ON records (dataset_id, date DESC);`,
	},
	{
		Name: "create_table_summaries",
		SQL: `CREATE TABLE IF NOT EXISTS summaries (
  id                 BIGSERIAL        PRIMARY KEY,
  file_name          TEXT             NOT NULL UNIQUE,
  delta_seconds      DOUBLE PRECISION NOT NULL CHECK (delta_seconds >= 0),
  min_date           TIMESTAMPTZ      NOT NULL,
  avg_execution_time DOUBLE PRECISION NOT NULL,
  avg_value          DOUBLE PRECISION NOT NULL,
  median_value       DOUBLE PRECISION NOT NULL,
  max_value          DOUBLE PRECISION NOT NULL,
  min_value          DOUBLE PRECISION NOT NULL,
  updated_at         TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_summaries_min_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_summaries_min_date ON summaries (min_date);`,
	},
	{
		Name: "create_index_summaries_avg_value",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_summaries_avg_value ON summaries (avg_value);`,
	},
	{
		Name: "create_index_summaries_avg_execution_time",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_summaries_avg_execution_time ON summaries (avg_execution_time);`,
	},
}

// EnsureMigrated checks if the 'summaries' table exists and runs migrations if it doesn't.
// Every step is idempotent.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	logger = logger.With("component", "database", "db_host", dbHost)

	logger.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.summaries') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logger.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	logger.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	logger.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
