// Package backend selects and constructs the row store the application
// runs against: in-memory, Google Sheets, or local SQLite mirrored to
// Sheets through the sync worker.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kasku/internal/adapters"
	"kasku/internal/amqp"
	"kasku/internal/config"
	"kasku/internal/services"
	ports "kasku/internal/sheets"
	gsheet "kasku/internal/sheets/google"
	"kasku/internal/sheets/memory"
	"kasku/internal/storage"
)

type Type string

const (
	Memory Type = "memory"
	Sheets Type = "sheets"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, Sheets, SQLite:
		return true
	}
	return false
}

// CleanupFunc releases backend resources; may be nil.
type CleanupFunc func() error

type Result struct {
	Store   ports.Store
	Cleanup CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store named by cfg.DataBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	switch t {
	case Memory:
		store := memory.NewFromFiles(cfg.DataDirectory)
		f.logger.Info("Initialized memory backend", "data_directory", cfg.DataDirectory)
		return &Result{Store: store}, nil

	case Sheets:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CategorySheet:   cfg.CategorySheetName,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return &Result{Store: cli}, nil

	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}

		var publisher services.Publisher
		if cfg.AMQPURL != "" {
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
			} else {
				publisher = client
				f.logger.Info("Initialized AMQP client",
					"exchange", cfg.AMQPExchange,
					"queue", cfg.AMQPQueue)
			}
		}

		service := services.NewLedgerService(repo, publisher)
		adapter := adapters.NewSQLiteAdapter(repo, service)
		f.logger.Info("Initialized SQLite backend",
			"db_path", cfg.SQLiteDBPath,
			"amqp_enabled", publisher != nil)
		return &Result{Store: adapter, Cleanup: service.Close}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
