package core

import (
	"errors"
	"time"
)

const (
	TableIncome   = "Income"
	TableExpenses = "Expenses"
	TableBarang   = "Barang"
)

// DateLayout is the only accepted date format for stored rows.
const DateLayout = "2006-01-02"

type (
	// Entry is one validated financial record: a spreadsheet row after
	// parsing. Amounts are whole rupiah, no fractional unit.
	Entry struct {
		ID       string
		Date     time.Time
		Item     string
		Category string
		Amount   int64
	}

	// RowSchema maps the positional columns of a raw row to entry fields.
	// ID set to -1 marks a legacy layout without an id column; such rows
	// are addressed by their sheet row index instead.
	RowSchema struct {
		ID       int
		Date     int
		Item     int
		Category int
		Amount   int
	}
)

// LedgerSchema is the column layout shared by the Income, Expenses and
// Barang tables: id, date, item, category, amount (range A2:E).
var LedgerSchema = RowSchema{ID: 0, Date: 1, Item: 2, Category: 3, Amount: 4}

// LegacySchema is the pre-id layout (range A2:D): date, item, category, amount.
var LegacySchema = RowSchema{ID: -1, Date: 0, Item: 1, Category: 2, Amount: 3}

var (
	ErrShortRow  = errors.New("row has too few fields")
	ErrBadDate   = errors.New("unparseable date")
	ErrBadAmount = errors.New("unparseable amount")
)

func KnownTable(name string) bool {
	switch name {
	case TableIncome, TableExpenses, TableBarang:
		return true
	}
	return false
}
