package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/shiftmeter/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const wageKey = "hourly_wage"

// SQLite stores settings and shifts in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS shifts (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL,
			ended_at TEXT NOT NULL,
			seconds INTEGER NOT NULL,
			amount REAL NOT NULL,
			wage REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_seq ON shifts(seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadWage returns the stored wage string and whether one was saved.
func (s *SQLite) LoadWage(ctx context.Context) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, wageKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SaveWage stores the wage string.
func (s *SQLite) SaveWage(ctx context.Context, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		wageKey, value)
	return err
}

// AppendShift stores a completed shift ahead of all existing ones.
func (s *SQLite) AppendShift(ctx context.Context, record model.ShiftRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var seq int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM shifts`).Scan(&seq); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO shifts (id, seq, ended_at, seconds, amount, wage)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		seq,
		record.EndedAt.UTC().Format(time.RFC3339Nano),
		record.DurationSeconds,
		record.Amount,
		record.Wage,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearShifts removes every shift.
func (s *SQLite) ClearShifts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shifts`)
	return err
}

// ListShifts returns all shifts, most recent first.
func (s *SQLite) ListShifts(ctx context.Context) ([]model.ShiftRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ended_at, seconds, amount, wage FROM shifts ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	records := []model.ShiftRecord{}
	for rows.Next() {
		var rec model.ShiftRecord
		var endedAt string
		if err := rows.Scan(&rec.ID, &endedAt, &rec.DurationSeconds, &rec.Amount, &rec.Wage); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		rec.EndedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
