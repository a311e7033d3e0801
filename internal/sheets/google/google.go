// Package google adapts the row-store ports to the Google Sheets API.
// Every operation is a single remote round trip; failures surface to the
// caller unchanged, with no retry.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	ports "kasku/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// dataRange covers the id..amount columns of every ledger table,
// starting at row 2 (row 1 is the header).
const dataRange = "A2:E"

// Config carries everything the client needs, constructed once at startup
// and injected. The client reads no ambient environment itself.
type Config struct {
	SpreadsheetID string
	// Exactly one of CredentialsJSON / CredentialsFile is required.
	CredentialsJSON string
	CredentialsFile string
	// CategorySheet holds the configured category lists, one column per
	// kind. Defaults to "Category".
	CategorySheet string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	categorySheet string
}

var _ ports.Store = (*Client)(nil)

// categoryColumns maps a category kind to its column in the category
// sheet, matching the spreadsheet convention of the ledger workbook.
var categoryColumns = map[string]string{
	"income":   "A",
	"expenses": "B",
	"barang":   "C",
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, errors.New("missing service account credentials")
		}
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	categorySheet := strings.TrimSpace(cfg.CategorySheet)
	if categorySheet == "" {
		categorySheet = "Category"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		categorySheet: categorySheet,
	}, nil
}

// GetRows implements ports.RowReader.
func (c *Client) GetRows(ctx context.Context, table string) ([][]string, error) {
	rng := fmt.Sprintf("%s!%s", table, dataRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

// AppendRow implements ports.RowAppender.
func (c *Client) AppendRow(ctx context.Context, table string, row []string) (string, error) {
	rng := fmt.Sprintf("%s!%s", table, dataRange)
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(row)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// UpdateRow implements ports.RowUpdater. The index is zero-based over the
// data region, so sheet row = index + 2 (header in row 1).
func (c *Client) UpdateRow(ctx context.Context, table string, rowIndex int, row []string) error {
	sheetRow := rowIndex + 2
	rng := fmt.Sprintf("%s!A%d:E%d", table, sheetRow, sheetRow)
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(row)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// DeleteRow implements ports.RowDeleter by clearing the row's cells, as
// the workbook convention expects (rows are never shifted up).
func (c *Client) DeleteRow(ctx context.Context, table string, rowIndex int) error {
	sheetRow := rowIndex + 2
	rng := fmt.Sprintf("%s!A%d:E%d", table, sheetRow, sheetRow)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// GetCategories implements ports.CategoryReader.
func (c *Client) GetCategories(ctx context.Context, kind string) ([]string, error) {
	col, ok := categoryColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown category kind %q", kind)
	}
	rng := fmt.Sprintf("%s!%s2:%s", c.categorySheet, col, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []string
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return dedupe(out), nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
