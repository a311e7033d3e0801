// Package core implements the aggregation engine: row parsing, monthly and
// category bucketing, growth rates and the annual rollup. It is pure and
// does no I/O; raw rows come from whatever store adapter the caller uses.
package core

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a strict YYYY-MM-DD date. Anything else is ErrBadDate.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ParseAmount converts locale-formatted amount text to whole rupiah.
// Both "." and "," appear as thousands separators in the source data
// ("100.000", "1,250,000") and are stripped before conversion. The result
// must be a non-negative number.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrBadAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, ErrBadAmount
	}
	return int64(f + 0.5), nil
}

// Parse validates one raw row against the schema. A non-nil error means
// the row is routine data noise and must be skipped by aggregation, never
// surfaced to the caller.
func (s RowSchema) Parse(row []string) (Entry, error) {
	if len(row) <= s.max() {
		return Entry{}, ErrShortRow
	}
	date, err := ParseDate(row[s.Date])
	if err != nil {
		return Entry{}, err
	}
	amount, err := ParseAmount(row[s.Amount])
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Date:     date,
		Item:     strings.TrimSpace(row[s.Item]),
		Category: strings.TrimSpace(row[s.Category]),
		Amount:   amount,
	}
	if s.ID >= 0 {
		e.ID = strings.TrimSpace(row[s.ID])
	}
	return e, nil
}

func (s RowSchema) max() int {
	m := s.Date
	for _, i := range []int{s.ID, s.Item, s.Category, s.Amount} {
		if i > m {
			m = i
		}
	}
	return m
}

// Row renders an entry back into the schema's column order, the inverse of
// Parse. Amounts are written as plain digits; the spreadsheet applies its
// own display format.
func (s RowSchema) Row(e Entry) []string {
	row := make([]string, s.max()+1)
	if s.ID >= 0 {
		row[s.ID] = e.ID
	}
	row[s.Date] = e.Date.Format(DateLayout)
	row[s.Item] = e.Item
	row[s.Category] = e.Category
	row[s.Amount] = strconv.FormatInt(e.Amount, 10)
	return row
}
