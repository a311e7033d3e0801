// Package services orchestrates ledger writes across the local SQLite
// store and the AMQP sync pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kasku/internal/amqp"
	"kasku/internal/core"
	"kasku/internal/storage"
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishEntrySync(ctx context.Context, rowID int64) error
	PublishEntryDelete(ctx context.Context, rowID int64, table, entryID string) error
	Close() error
}

var _ Publisher = (*amqp.Client)(nil)

// LedgerService writes locally first, then publishes a sync message so
// the worker mirrors the change to the spreadsheet. Publish failures are
// logged, never surfaced: the local write already succeeded and the
// worker's periodic pending scan will catch up.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher Publisher
}

func NewLedgerService(storage *storage.SQLiteRepository, publisher Publisher) *LedgerService {
	return &LedgerService{storage: storage, publisher: publisher}
}

// CreateEntry stores a new entry and returns its local rowid. A missing
// entry ID gets a generated one so the spreadsheet row stays addressable.
func (s *LedgerService) CreateEntry(ctx context.Context, table string, e core.Entry) (int64, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	rowID, err := s.storage.AppendEntry(ctx, table, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "No AMQP publisher configured, skipping sync message", "row_id", rowID)
		return rowID, nil
	}
	if err := s.publisher.PublishEntrySync(ctx, rowID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "row_id", rowID, "error", err)
	}
	return rowID, nil
}

// UpdateEntry overwrites an existing entry and queues a re-sync.
func (s *LedgerService) UpdateEntry(ctx context.Context, rowID int64, e core.Entry) error {
	if err := s.storage.UpdateEntry(ctx, rowID, e); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEntrySync(ctx, rowID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "row_id", rowID, "error", err)
		}
	}
	return nil
}

// DeleteEntry soft deletes locally and queues the remote deletion.
func (s *LedgerService) DeleteEntry(ctx context.Context, rowID int64) error {
	stored, err := s.storage.GetEntry(ctx, rowID)
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}
	if err := s.storage.SoftDeleteEntry(ctx, rowID); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEntryDelete(ctx, rowID, stored.Table, stored.Entry.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "row_id", rowID, "error", err)
		}
	}
	return nil
}

// Close closes the storage and publisher connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
