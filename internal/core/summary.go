package core

import (
	"fmt"
	"time"
)

type (
	// MonthBucket holds the totals of one calendar month.
	MonthBucket struct {
		Income   int64 `json:"income"`
		Expenses int64 `json:"expenses"`
		Balance  int64 `json:"balance"`
	}

	// YearSummary always carries all 12 months of the selected year, in
	// calendar order, zero-valued where no activity was recorded.
	YearSummary struct {
		Year   int
		Months [12]MonthBucket // Months[0] = January
	}
)

// SummarizeYear buckets raw income and expense rows by calendar month for
// the given year. Rows that fail to parse contribute nothing; rows from
// other years are ignored. Accumulation is order-independent and the
// balance is derived only after both streams are summed.
func SummarizeYear(incomeRows, expenseRows [][]string, schema RowSchema, year int) YearSummary {
	ys := YearSummary{Year: year}
	accumulate(&ys, incomeRows, schema, year, func(b *MonthBucket, amount int64) {
		b.Income += amount
	})
	accumulate(&ys, expenseRows, schema, year, func(b *MonthBucket, amount int64) {
		b.Expenses += amount
	})
	for i := range ys.Months {
		ys.Months[i].Balance = ys.Months[i].Income - ys.Months[i].Expenses
	}
	return ys
}

func accumulate(ys *YearSummary, rows [][]string, schema RowSchema, year int, add func(*MonthBucket, int64)) {
	for _, row := range rows {
		e, err := schema.Parse(row)
		if err != nil {
			continue // skip malformed rows silently
		}
		if e.Date.Year() != year {
			continue
		}
		add(&ys.Months[int(e.Date.Month())-1], e.Amount)
	}
}

// IndexedEntry pairs a parsed entry with its zero-based position in the
// raw row slice, which is what update and delete operations address.
type IndexedEntry struct {
	Row   int
	Entry Entry
}

// MonthIndexedEntries parses and filters raw rows down to the entries of
// one (year, month), keeping each entry's original row index. Malformed
// rows are dropped; sheet order is preserved.
func MonthIndexedEntries(rows [][]string, schema RowSchema, year int, month time.Month) []IndexedEntry {
	var out []IndexedEntry
	for i, row := range rows {
		e, err := schema.Parse(row)
		if err != nil {
			continue
		}
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		out = append(out, IndexedEntry{Row: i, Entry: e})
	}
	return out
}

// MonthEntries is MonthIndexedEntries without the row indexes.
func MonthEntries(rows [][]string, schema RowSchema, year int, month time.Month) []Entry {
	indexed := MonthIndexedEntries(rows, schema, year, month)
	out := make([]Entry, 0, len(indexed))
	for _, ie := range indexed {
		out = append(out, ie.Entry)
	}
	return out
}

// SummarizeCategories sums entry amounts per category label. The two
// returned slices are paired positionally by callers (chart labels and
// values), so labels keep strict first-seen order.
func SummarizeCategories(entries []Entry) (labels []string, values []int64) {
	idx := make(map[string]int)
	for _, e := range entries {
		i, ok := idx[e.Category]
		if !ok {
			i = len(labels)
			idx[e.Category] = i
			labels = append(labels, e.Category)
			values = append(values, 0)
		}
		values[i] += e.Amount
	}
	return labels, values
}

// MonthKey formats the "YYYY-MM" key used for month pairs and selectors.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d", year, month)
}
