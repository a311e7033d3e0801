// Package storage is the local SQLite ledger used by the sqlite backend.
// It is the write-ahead copy of the spreadsheet: entries land here first
// and a worker mirrors them to the remote sheet asynchronously.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kasku/internal/core"

	_ "modernc.org/sqlite"
)

const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// StoredEntry is a ledger entry as persisted locally, with sync metadata
// the core never sees.
type StoredEntry struct {
	RowID      int64
	Table      string
	Entry      core.Entry
	SyncStatus string
	CreatedAt  time.Time
}

type SQLiteRepository struct {
	db *sql.DB
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

// AppendEntry inserts a new entry as pending sync and returns its local rowid.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, table string, e core.Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (entry_id, table_name, entry_date, item, category, amount, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, table, e.Date.Format(core.DateLayout), e.Item, e.Category, e.Amount, SyncPending)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetEntry returns one entry by local rowid, including soft-deleted ones
// (the sync worker needs those to mirror deletions).
func (r *SQLiteRepository) GetEntry(ctx context.Context, rowID int64) (StoredEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entry_id, table_name, entry_date, item, category, amount, sync_status, created_at
		FROM entries WHERE id = ?`, rowID)
	return scanEntry(row)
}

// ListEntries returns the non-deleted entries of a table in insertion
// order, matching the sheet's row order contract.
func (r *SQLiteRepository) ListEntries(ctx context.Context, table string) ([]StoredEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_id, table_name, entry_date, item, category, amount, sync_status, created_at
		FROM entries WHERE table_name = ? AND deleted_at IS NULL ORDER BY id`, table)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateEntry overwrites an entry's fields and resets it to pending sync.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, rowID int64, e core.Entry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries
		SET entry_date = ?, item = ?, category = ?, amount = ?, sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`,
		e.Date.Format(core.DateLayout), e.Item, e.Category, e.Amount, SyncPending, rowID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireOneRow(res, rowID)
}

// SoftDeleteEntry marks an entry deleted without losing the row, so the
// worker can still mirror the deletion remotely.
func (r *SQLiteRepository) SoftDeleteEntry(ctx context.Context, rowID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, rowID)
	if err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	return requireOneRow(res, rowID)
}

// PendingSync returns up to limit entries awaiting a mirror to the sheet.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]StoredEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_id, table_name, entry_date, item, category, amount, sync_status, created_at
		FROM entries WHERE sync_status = ? AND deleted_at IS NULL ORDER BY id LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, rowID int64) error {
	return r.setSyncStatus(ctx, rowID, SyncDone)
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, rowID int64) error {
	return r.setSyncStatus(ctx, rowID, SyncError)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, rowID int64, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE entries SET sync_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, rowID)
	if err != nil {
		return fmt.Errorf("set sync status %s: %w", status, err)
	}
	return nil
}

// Categories returns the cached category labels of one kind, in the
// position order they carry on the sheet.
func (r *SQLiteRepository) Categories(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ReplaceCategories swaps the cached list of one kind atomically.
func (r *SQLiteRepository) ReplaceCategories(ctx context.Context, kind string, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for i, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (kind, name, position) VALUES (?, ?, ?)`,
			kind, name, i); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) CategoryCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (StoredEntry, error) {
	var (
		e       StoredEntry
		dateStr string
	)
	err := s.Scan(&e.RowID, &e.Entry.ID, &e.Table, &dateStr, &e.Entry.Item,
		&e.Entry.Category, &e.Entry.Amount, &e.SyncStatus, &e.CreatedAt)
	if err != nil {
		return StoredEntry{}, fmt.Errorf("scan entry: %w", err)
	}
	d, err := time.Parse(core.DateLayout, dateStr)
	if err != nil {
		return StoredEntry{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	e.Entry.Date = d
	return e, nil
}

func requireOneRow(res sql.Result, rowID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %d not found", rowID)
	}
	return nil
}
