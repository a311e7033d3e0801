// Package worker mirrors locally stored ledger entries to the remote
// spreadsheet, driven by AMQP messages with a periodic pending scan as
// backup for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kasku/internal/amqp"
	"kasku/internal/core"
	ports "kasku/internal/sheets"
	"kasku/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	store     ports.Store
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, store ports.Store, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		store:     store,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors one entry to the spreadsheet.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "row_id", msg.RowID)

	stored, err := w.storage.GetEntry(ctx, msg.RowID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}
	return w.syncEntry(ctx, stored)
}

// HandleDeleteMessage clears the spreadsheet row carrying the entry id.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EntryDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"row_id", msg.RowID,
		"table", msg.Table)

	if msg.EntryID == "" {
		slog.WarnContext(ctx, "Delete message without entry id, cannot locate remote row",
			"row_id", msg.RowID)
		return nil
	}

	rowIndex, err := w.findRemoteRow(ctx, msg.Table, msg.EntryID)
	if err != nil {
		return fmt.Errorf("locate remote row: %w", err)
	}
	if rowIndex < 0 {
		// Never synced, or already cleared remotely.
		slog.InfoContext(ctx, "Remote row not found, nothing to delete",
			"table", msg.Table,
			"entry_id", msg.EntryID)
		return nil
	}

	if err := w.store.DeleteRow(ctx, msg.Table, rowIndex); err != nil {
		return fmt.Errorf("delete remote row: %w", err)
	}
	slog.InfoContext(ctx, "Deleted remote row",
		"table", msg.Table,
		"row_index", rowIndex)
	return nil
}

// ProcessPending mirrors entries that are still pending. This runs on a
// timer to recover from missed AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))
	for _, stored := range pending {
		if err := w.syncEntry(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "row_id", stored.RowID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains a larger pending batch at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending entries for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending entries on startup, processing...", "count", len(pending))
	synced, failed := 0, 0
	for _, stored := range pending {
		if err := w.syncEntry(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry during startup",
				"row_id", stored.RowID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

// SyncCategoriesIfNeeded refreshes the local category cache from the
// spreadsheet when it is empty. The cache only exists so the web process
// can render forms without a remote round trip.
func (w *SyncWorker) SyncCategoriesIfNeeded(ctx context.Context) error {
	count, err := w.storage.CategoryCount(ctx)
	if err != nil {
		return fmt.Errorf("check category count: %w", err)
	}
	if count > 0 {
		slog.InfoContext(ctx, "Category cache already populated", "count", count)
		return nil
	}

	slog.InfoContext(ctx, "No categories cached, loading from spreadsheet...")
	for _, kind := range []string{"income", "expenses", "barang"} {
		names, err := w.store.GetCategories(ctx, kind)
		if err != nil {
			return fmt.Errorf("load %s categories: %w", kind, err)
		}
		if err := w.storage.ReplaceCategories(ctx, kind, names); err != nil {
			return fmt.Errorf("cache %s categories: %w", kind, err)
		}
		slog.InfoContext(ctx, "Categories cached", "kind", kind, "count", len(names))
	}
	return nil
}

func (w *SyncWorker) syncEntry(ctx context.Context, stored storage.StoredEntry) error {
	row := core.LedgerSchema.Row(stored.Entry)

	// If the entry was synced before (updates re-enter pending), overwrite
	// the existing remote row instead of appending a duplicate.
	rowIndex, err := w.findRemoteRow(ctx, stored.Table, stored.Entry.ID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, stored.RowID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "row_id", stored.RowID, "error", markErr)
		}
		return fmt.Errorf("locate remote row: %w", err)
	}

	if rowIndex >= 0 {
		err = w.store.UpdateRow(ctx, stored.Table, rowIndex, row)
	} else {
		_, err = w.store.AppendRow(ctx, stored.Table, row)
	}
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, stored.RowID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "row_id", stored.RowID, "error", markErr)
		}
		return fmt.Errorf("mirror entry to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, stored.RowID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "row_id", stored.RowID, "error", err)
		// The mirror itself worked; don't fail the message.
	}

	slog.InfoContext(ctx, "Synced entry",
		"row_id", stored.RowID,
		"table", stored.Table,
		"entry_id", stored.Entry.ID,
		"amount", stored.Entry.Amount)
	return nil
}

// findRemoteRow scans the remote table for the row carrying entryID in
// its id column. Returns -1 when absent.
func (w *SyncWorker) findRemoteRow(ctx context.Context, table, entryID string) (int, error) {
	if entryID == "" {
		return -1, nil
	}
	rows, err := w.store.GetRows(ctx, table)
	if err != nil {
		return -1, err
	}
	for i, row := range rows {
		if len(row) > core.LedgerSchema.ID && row[core.LedgerSchema.ID] == entryID {
			return i, nil
		}
	}
	return -1, nil
}

// Run consumes sync messages and keeps the periodic pending scan alive
// until the context is canceled.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
				}
			}
		}
	}()

	return client.ConsumeMessages(ctx, w.HandleSyncMessage, w.HandleDeleteMessage)
}
