// Package storage provides SQLite implementation of the Manifest interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/doctxt/internal/models"
)

// SQLiteStorage implements Manifest using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Conversion workers write concurrently; a single connection serializes them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		output_path TEXT,
		format TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		source_size INTEGER NOT NULL DEFAULT 0,
		source_mtime INTEGER NOT NULL DEFAULT 0,
		text_bytes INTEGER NOT NULL DEFAULT 0,
		run_id TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status);
	CREATE INDEX IF NOT EXISTS idx_extractions_source_path ON extractions(source_path);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_root TEXT NOT NULL,
		output_root TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		total INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		empty INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		unsupported INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		unchanged INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := db.Exec(schema)
	return err
}

// PutExtraction inserts or replaces the record for rec.ID.
func (s *SQLiteStorage) PutExtraction(ctx context.Context, rec *models.ExtractionRecord) error {
	if rec.ID == "" {
		return errors.New("extraction record has no id")
	}
	rec.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, source_path, output_path, format, status, error,
			source_size, source_mtime, text_bytes, run_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_path = excluded.source_path,
			output_path = excluded.output_path,
			format = excluded.format,
			status = excluded.status,
			error = excluded.error,
			source_size = excluded.source_size,
			source_mtime = excluded.source_mtime,
			text_bytes = excluded.text_bytes,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at`,
		rec.ID, rec.SourcePath, rec.OutputPath, rec.Format, rec.Status, rec.Error,
		rec.SourceSize, rec.SourceModTime.UnixNano(), rec.TextBytes, rec.RunID, rec.UpdatedAt,
	)
	return err
}

const extractionColumns = `id, source_path, output_path, format, status, error,
	source_size, source_mtime, text_bytes, run_id, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*models.ExtractionRecord, error) {
	var rec models.ExtractionRecord
	var outputPath, errText, runID sql.NullString
	var mtime int64
	if err := row.Scan(&rec.ID, &rec.SourcePath, &outputPath, &rec.Format, &rec.Status, &errText,
		&rec.SourceSize, &mtime, &rec.TextBytes, &runID, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.OutputPath = outputPath.String
	rec.Error = errText.String
	rec.RunID = runID.String
	rec.SourceModTime = time.Unix(0, mtime)
	return &rec, nil
}

// GetExtraction returns the record with the given id.
func (s *SQLiteStorage) GetExtraction(ctx context.Context, id string) (*models.ExtractionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+extractionColumns+` FROM extractions WHERE id = ?`, id)
	rec, err := scanExtraction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("extraction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteExtraction removes a record by id. Deleting a missing record is not an error.
func (s *SQLiteStorage) DeleteExtraction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM extractions WHERE id = ?`, id)
	return err
}

// ListExtractions returns records ordered by source path with offset and limit.
func (s *SQLiteStorage) ListExtractions(ctx context.Context, offset, limit int) ([]*models.ExtractionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+extractionColumns+` FROM extractions ORDER BY source_path LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.ExtractionRecord
	for rows.Next() {
		rec, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CreateRun inserts a run. A new UUID is assigned when run.ID is empty.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *models.RunSummary) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_root, output_root, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.InputRoot, run.OutputRoot, run.StartedAt,
	)
	return err
}

// FinishRun stores the counts of run and stamps its finish time.
func (s *SQLiteStorage) FinishRun(ctx context.Context, run *models.RunSummary) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, success = ?, empty = ?, failed = ?,
			unsupported = ?, skipped = ?, unchanged = ?
		 WHERE id = ?`,
		*run.FinishedAt, run.Total, run.Success, run.Empty, run.Failed,
		run.Unsupported, run.Skipped, run.Unchanged, run.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *SQLiteStorage) LatestRun(ctx context.Context) (*models.RunSummary, error) {
	var run models.RunSummary
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_root, output_root, started_at, finished_at, total, success, empty,
			failed, unsupported, skipped, unchanged
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &run.InputRoot, &run.OutputRoot, &run.StartedAt, &finished, &run.Total,
		&run.Success, &run.Empty, &run.Failed, &run.Unsupported, &run.Skipped, &run.Unchanged)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// CountExtractions returns the total number of manifest records.
func (s *SQLiteStorage) CountExtractions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extractions`).Scan(&count)
	return count, err
}

// CountByStatus returns the number of manifest records per status.
func (s *SQLiteStorage) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM extractions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
