package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	_ "github.com/lib/pq" // драйвер postgres для database/sql
	"go.uber.org/zap"
)

// PostgresJournal реализует Journal с использованием PostgreSQL
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresJournal подключается к базе данных и создает таблицу журнала
func NewPostgresJournal(dsn string, logger *zap.Logger) (*PostgresJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	createTableSQL := `CREATE TABLE IF NOT EXISTS operations (` +
		`id BIGSERIAL PRIMARY KEY,` +
		`run_id VARCHAR(64) NOT NULL,` +
		`kind VARCHAR(16) NOT NULL,` +
		`source_container TEXT NOT NULL DEFAULT '',` +
		`source_blob TEXT NOT NULL DEFAULT '',` +
		`target_container TEXT NOT NULL,` +
		`target_blob TEXT NOT NULL,` +
		`copy_id TEXT NOT NULL DEFAULT '',` +
		`status TEXT NOT NULL DEFAULT '',` +
		`size BIGINT NOT NULL DEFAULT 0,` +
		`row_count BIGINT NOT NULL DEFAULT 0,` +
		`created_at TIMESTAMPTZ NOT NULL` +
		`)`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after table creation error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("table creation error: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS operations_run_id_idx ON operations (run_id)`); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after index creation error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("index creation error: %w", err)
	}

	return &PostgresJournal{
		db:     db,
		logger: logger,
	}, nil
}

// Record сохраняет пакет операций в одной транзакции
func (pj *PostgresJournal) Record(ctx context.Context, ops []models.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := pj.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction start error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback после Commit безопасен

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO operations `+
		`(run_id, kind, source_container, source_blob, target_container, target_blob, copy_id, status, size, row_count, created_at) `+
		`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("query preparation error: %w", err)
	}
	defer stmt.Close()

	for _, op := range ops {
		if _, err := stmt.ExecContext(ctx,
			op.RunID, string(op.Kind), op.SourceContainer, op.SourceBlob,
			op.TargetContainer, op.TargetBlob, op.CopyID, op.Status,
			op.Size, op.Rows, op.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert operation error for %s: %w", op.TargetBlob, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit error: %w", err)
	}
	return nil
}

// Run возвращает операции запуска в порядке вставки
func (pj *PostgresJournal) Run(ctx context.Context, runID string) ([]models.Operation, error) {
	rows, err := pj.db.QueryContext(ctx, `SELECT run_id, kind, source_container, source_blob, `+
		`target_container, target_blob, copy_id, status, size, row_count, created_at `+
		`FROM operations WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("select operations error: %w", err)
	}
	defer rows.Close()

	var ops []models.Operation
	for rows.Next() {
		var op models.Operation
		var kind string
		if err := rows.Scan(&op.RunID, &kind, &op.SourceContainer, &op.SourceBlob,
			&op.TargetContainer, &op.TargetBlob, &op.CopyID, &op.Status,
			&op.Size, &op.Rows, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation error: %w", err)
		}
		op.Kind = models.OperationKind(kind)
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations error: %w", err)
	}

	if len(ops) == 0 {
		return nil, ErrRunNotFound
	}
	return ops, nil
}

// Close закрывает соединение с базой данных
func (pj *PostgresJournal) Close() error {
	return pj.db.Close()
}

// CheckConnection проверяет соединение с базой данных
func (pj *PostgresJournal) CheckConnection(ctx context.Context) error {
	return pj.db.PingContext(ctx)
}
