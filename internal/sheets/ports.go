package sheets

import "context"

// Ports for outbound row-store adapters. Tables are addressed by their
// logical name (Income, Expenses, Barang); rows are positional string
// fields under the schema contract in internal/core. Row indexes are
// zero-based over the data region (header row excluded).
type (
	RowReader interface {
		// GetRows returns every data row of the table, in sheet order.
		// An empty table yields an empty slice, not an error.
		GetRows(ctx context.Context, table string) ([][]string, error)
	}

	RowAppender interface {
		// AppendRow appends one row and returns an adapter-specific
		// reference to where it landed.
		AppendRow(ctx context.Context, table string, row []string) (ref string, err error)
	}

	RowUpdater interface {
		UpdateRow(ctx context.Context, table string, rowIndex int, row []string) error
	}

	RowDeleter interface {
		DeleteRow(ctx context.Context, table string, rowIndex int) error
	}

	// CategoryReader lists configured category labels per kind
	// (income, expenses, barang), in sheet order.
	CategoryReader interface {
		GetCategories(ctx context.Context, kind string) ([]string, error)
	}

	// Store is the full set of operations a backend must provide.
	Store interface {
		RowReader
		RowAppender
		RowUpdater
		RowDeleter
		CategoryReader
	}
)
