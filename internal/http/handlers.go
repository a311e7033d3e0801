package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kasku/internal/core"
)

// ledgerPage describes one of the three table-backed pages. The three
// pages share a template and a handler; only the table and category kind
// differ.
type ledgerPage struct {
	Table        string
	Title        string
	CategoryKind string
}

var (
	incomePage   = ledgerPage{Table: core.TableIncome, Title: "Pemasukan", CategoryKind: "income"}
	expensesPage = ledgerPage{Table: core.TableExpenses, Title: "Pengeluaran", CategoryKind: "expenses"}
	barangPage   = ledgerPage{Table: core.TableBarang, Title: "Barang", CategoryKind: "barang"}
)

type dashboardView struct {
	Year   int
	Report core.AnnualReport
}

type ledgerView struct {
	Title        string
	Table        string
	Year         int
	Month        int
	MonthName    string
	Entries      []core.IndexedEntry
	Total        int64
	ChartLabels  []string
	ChartValues  []int64
	Categories   []string
	SelectedDate string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	year, err := yearSelector(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.annualReport(r, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load dashboard data", "year", year, "error", err)
		http.Error(w, "Failed to load data", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", dashboardView{Year: year, Report: report})
}

// annualReport fetches both ledgers concurrently and aggregates them.
func (s *Server) annualReport(r *http.Request, year int) (core.AnnualReport, error) {
	var incomeRows, expenseRows [][]string

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		rows, err := s.store.GetRows(ctx, core.TableIncome)
		if err != nil {
			return err
		}
		incomeRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.GetRows(ctx, core.TableExpenses)
		if err != nil {
			return err
		}
		expenseRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.AnnualReport{}, err
	}

	return core.BuildAnnualReport(incomeRows, expenseRows, core.LedgerSchema, year), nil
}

// ledgerHandler serves one table page: GET renders the month view, POST
// appends a new entry.
func (s *Server) ledgerHandler(page ledgerPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.renderLedger(w, r, page)
		case http.MethodPost:
			s.appendEntry(w, r, page)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) renderLedger(w http.ResponseWriter, r *http.Request, page ledgerPage) {
	year, month, err := monthYearSelector(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.store.GetRows(r.Context(), page.Table)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read rows", "table", page.Table, "error", err)
		http.Error(w, "Failed to load data", http.StatusInternalServerError)
		return
	}
	categories, err := s.store.GetCategories(r.Context(), page.CategoryKind)
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to read categories", "kind", page.CategoryKind, "error", err)
		categories = nil
	}

	entries := core.MonthIndexedEntries(rows, core.LedgerSchema, year, month)
	plain := make([]core.Entry, 0, len(entries))
	var total int64
	for _, ie := range entries {
		plain = append(plain, ie.Entry)
		total += ie.Entry.Amount
	}
	labels, values := core.SummarizeCategories(plain)

	s.render(w, r, "ledger.html", ledgerView{
		Title:        page.Title,
		Table:        page.Table,
		Year:         year,
		Month:        int(month),
		MonthName:    MonthName(month),
		Entries:      entries,
		Total:        total,
		ChartLabels:  labels,
		ChartValues:  values,
		Categories:   categories,
		SelectedDate: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(core.DateLayout),
	})
}

func (s *Server) appendEntry(w http.ResponseWriter, r *http.Request, page ledgerPage) {
	if err := r.ParseForm(); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	raw := make([]string, 5)
	raw[core.LedgerSchema.ID] = uuid.NewString()
	raw[core.LedgerSchema.Date] = strings.TrimSpace(r.FormValue("date"))
	raw[core.LedgerSchema.Item] = strings.TrimSpace(r.FormValue("item"))
	raw[core.LedgerSchema.Category] = strings.TrimSpace(r.FormValue("category"))
	raw[core.LedgerSchema.Amount] = strings.TrimSpace(r.FormValue("amount"))

	entry, err := core.LedgerSchema.Parse(raw)
	if err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ref, err := s.store.AppendRow(r.Context(), page.Table, core.LedgerSchema.Row(entry))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to append row", "table", page.Table, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}
	slog.InfoContext(r.Context(), "Entry added", "table", page.Table, "ref", ref, "amount", entry.Amount)
	jsonSuccess(w)
}

// handleEdit updates one row in place: POST /edit/{table}/{rowIndex}.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	table, rowIndex, ok := rowTarget(r.URL.Path, "/edit/")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid edit target")
		return
	}
	if err := r.ParseForm(); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	raw := make([]string, 5)
	raw[core.LedgerSchema.ID] = strings.TrimSpace(r.FormValue("id"))
	raw[core.LedgerSchema.Date] = strings.TrimSpace(r.FormValue("date"))
	raw[core.LedgerSchema.Item] = strings.TrimSpace(r.FormValue("item"))
	raw[core.LedgerSchema.Category] = strings.TrimSpace(r.FormValue("category"))
	raw[core.LedgerSchema.Amount] = strings.TrimSpace(r.FormValue("amount"))

	entry, err := core.LedgerSchema.Parse(raw)
	if err != nil {
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if entry.ID == "" {
		// Preserve the row's existing id when the form omits it.
		if rows, rerr := s.store.GetRows(r.Context(), table); rerr == nil {
			if rowIndex < len(rows) && len(rows[rowIndex]) > core.LedgerSchema.ID {
				entry.ID = strings.TrimSpace(rows[rowIndex][core.LedgerSchema.ID])
			}
		}
	}

	if err := s.store.UpdateRow(r.Context(), table, rowIndex, core.LedgerSchema.Row(entry)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update row", "table", table, "row", rowIndex, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update entry")
		return
	}
	slog.InfoContext(r.Context(), "Entry updated", "table", table, "row", rowIndex)
	jsonSuccess(w)
}

// handleDelete clears one row: POST /delete/{table}/{rowIndex}. Deleted
// rows are blanked in place so later row indexes stay stable.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	table, rowIndex, ok := rowTarget(r.URL.Path, "/delete/")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid delete target")
		return
	}

	if err := s.store.DeleteRow(r.Context(), table, rowIndex); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete row", "table", table, "row", rowIndex, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	slog.InfoContext(r.Context(), "Entry deleted", "table", table, "row", rowIndex)
	jsonSuccess(w)
}

// rowTarget parses "/{prefix}{table}/{rowIndex}" into its parts.
func rowTarget(path, prefix string) (table string, rowIndex int, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", 0, false
	}
	table = parts[0]
	if !core.KnownTable(table) {
		return "", 0, false
	}
	rowIndex, err := strconv.Atoi(parts[1])
	if err != nil || rowIndex < 0 {
		return "", 0, false
	}
	return table, rowIndex, true
}

// handleReportAPI serves the annual rollup as JSON: GET /api/report?year=.
func (s *Server) handleReportAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	year, err := yearSelector(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.annualReport(r, year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build report", "year", year, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render template", "template", name, "error", err)
	}
}
