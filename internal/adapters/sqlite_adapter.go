// Package adapters bridges the local SQLite ledger to the row-store ports
// so the HTTP layer works unchanged against any backend.
package adapters

import (
	"context"
	"fmt"
	"strconv"

	"kasku/internal/core"
	"kasku/internal/services"
	ports "kasku/internal/sheets"
	"kasku/internal/storage"
)

type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.LedgerService
}

var _ ports.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.LedgerService) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage, service: service}
}

// GetRows implements ports.RowReader, rendering stored entries back into
// positional rows under the shared schema.
func (a *SQLiteAdapter) GetRows(ctx context.Context, table string) ([][]string, error) {
	entries, err := a.storage.ListEntries(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, core.LedgerSchema.Row(e.Entry))
	}
	return rows, nil
}

// AppendRow implements ports.RowAppender. The raw row must parse; unlike
// remote reads, locally written data is rejected up front rather than
// skipped later.
func (a *SQLiteAdapter) AppendRow(ctx context.Context, table string, row []string) (string, error) {
	e, err := core.LedgerSchema.Parse(row)
	if err != nil {
		return "", fmt.Errorf("invalid row: %w", err)
	}
	rowID, err := a.service.CreateEntry(ctx, table, e)
	if err != nil {
		return "", err
	}
	return "sqlite:" + strconv.FormatInt(rowID, 10), nil
}

// UpdateRow implements ports.RowUpdater.
func (a *SQLiteAdapter) UpdateRow(ctx context.Context, table string, rowIndex int, row []string) error {
	e, err := core.LedgerSchema.Parse(row)
	if err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}
	rowID, err := a.resolveIndex(ctx, table, rowIndex)
	if err != nil {
		return err
	}
	return a.service.UpdateEntry(ctx, rowID, e)
}

// DeleteRow implements ports.RowDeleter.
func (a *SQLiteAdapter) DeleteRow(ctx context.Context, table string, rowIndex int) error {
	rowID, err := a.resolveIndex(ctx, table, rowIndex)
	if err != nil {
		return err
	}
	return a.service.DeleteEntry(ctx, rowID)
}

// GetCategories implements ports.CategoryReader from the local cache
// maintained by the sync worker.
func (a *SQLiteAdapter) GetCategories(ctx context.Context, kind string) ([]string, error) {
	return a.storage.Categories(ctx, kind)
}

// resolveIndex maps the port's positional row index onto the local rowid,
// using the same listing order GetRows exposes.
func (a *SQLiteAdapter) resolveIndex(ctx context.Context, table string, rowIndex int) (int64, error) {
	entries, err := a.storage.ListEntries(ctx, table)
	if err != nil {
		return 0, err
	}
	if rowIndex < 0 || rowIndex >= len(entries) {
		return 0, fmt.Errorf("row %d out of range for table %q", rowIndex, table)
	}
	return entries[rowIndex].RowID, nil
}
