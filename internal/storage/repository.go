package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"renewables/internal/core"
	"renewables/internal/dataset"

	_ "modernc.org/sqlite"
)

var _ dataset.Provider = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// ImportInfo describes the last successful import.
type ImportInfo struct {
	Source     string
	RowCount   int
	Skipped    int
	ImportedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListYears implements dataset.YearLister. Years come back in insertion order.
func (r *SQLiteRepository) ListYears(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT year FROM records GROUP BY year ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// RecordsForYear implements dataset.RecordReader.
func (r *SQLiteRepository) RecordsForYear(ctx context.Context, year int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, state, renewables FROM records WHERE year = ? ORDER BY id`, year)
	if err != nil {
		return nil, fmt.Errorf("get records for year %d: %w", year, err)
	}
	defer rows.Close()

	out := make([]core.Record, 0)
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(&rec.Year, &rec.Category, &rec.Value); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReplaceAll swaps the whole table for records in one transaction and logs the import.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, source string, records []core.Record, skipped int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (year, state, renewables) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Year, rec.Category, rec.Value); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, row_count, skipped) VALUES (?, ?, ?)`,
		source, len(records), skipped); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Records replaced in SQLite", "source", source, "rows", len(records), "skipped", skipped)
	return nil
}

// LastImport returns the most recent import, or nil when nothing was imported yet.
func (r *SQLiteRepository) LastImport(ctx context.Context) (*ImportInfo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT source, row_count, skipped, imported_at FROM imports ORDER BY id DESC LIMIT 1`)
	var info ImportInfo
	if err := row.Scan(&info.Source, &info.RowCount, &info.Skipped, &info.ImportedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get last import: %w", err)
	}
	return &info, nil
}
