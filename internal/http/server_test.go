package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kasku/internal/core"
	"kasku/internal/sheets/memory"
)

func testServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New(map[string][]string{
		"income":   {"Salary", "Bonus"},
		"expenses": {"Food", "Transport"},
		"barang":   {"Elektronik"},
	})
	s := NewServer(":0", store)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, store
}

func seed(t *testing.T, store *memory.Store, table string, rows ...[]string) {
	t.Helper()
	for _, row := range rows {
		if _, err := store.AppendRow(context.Background(), table, row); err != nil {
			t.Fatalf("seed %s: %v", table, err)
		}
	}
}

func doRequest(s *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *stdhttp.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := testServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, stdhttp.MethodGet, path, nil)
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

func TestIndexRedirectsToDashboard(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(s, stdhttp.MethodGet, "/", nil)
	if rec.Code != stdhttp.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("location = %q", loc)
	}
}

func TestReportAPI(t *testing.T) {
	s, store := testServer(t)
	seed(t, store, core.TableIncome,
		[]string{"a", "2024-01-05", "Gaji", "Salary", "100.000"},
		[]string{"b", "2024-02-10", "Bonus", "Bonus", "50.000"},
	)
	seed(t, store, core.TableExpenses,
		[]string{"c", "2024-01-20", "Makan", "Food", "30.000"},
		[]string{"d", "bad-date", "Rusak", "Food", "10.000"},
	)

	rec := doRequest(s, stdhttp.MethodGet, "/api/report?year=2024", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report core.AnnualReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Year != 2024 {
		t.Fatalf("year = %d", report.Year)
	}
	if len(report.Months) != 12 {
		t.Fatalf("months = %d", len(report.Months))
	}
	if report.TotalIncome != 150000 {
		t.Fatalf("total income = %d", report.TotalIncome)
	}
	if report.TotalExpenses != 30000 {
		t.Fatalf("total expenses = %d", report.TotalExpenses)
	}
	if report.Months[0].Bucket.Balance != 70000 {
		t.Fatalf("january balance = %d", report.Months[0].Bucket.Balance)
	}
}

func TestReportAPIInvalidYear(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(s, stdhttp.MethodGet, "/api/report?year=abc", nil)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAppendEntry(t *testing.T) {
	s, store := testServer(t)

	form := url.Values{
		"date":     {"2024-03-15"},
		"item":     {"Kopi"},
		"category": {"Food"},
		"amount":   {"25.000"},
	}
	rec := doRequest(s, stdhttp.MethodPost, "/expenses", form)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "success" {
		t.Fatalf("response = %v", resp)
	}

	rows, err := store.GetRows(context.Background(), core.TableExpenses)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	e, err := core.LedgerSchema.Parse(rows[0])
	if err != nil {
		t.Fatalf("stored row does not parse: %v", err)
	}
	if e.ID == "" {
		t.Fatal("stored row has no id")
	}
	if e.Item != "Kopi" || e.Amount != 25000 {
		t.Fatalf("stored entry = %+v", e)
	}
}

func TestAppendEntryRejectsInvalid(t *testing.T) {
	s, store := testServer(t)

	cases := map[string]url.Values{
		"bad date": {
			"date": {"15-03-2024"}, "item": {"x"}, "category": {"Food"}, "amount": {"10.000"},
		},
		"bad amount": {
			"date": {"2024-03-15"}, "item": {"x"}, "category": {"Food"}, "amount": {"abc"},
		},
		"negative amount": {
			"date": {"2024-03-15"}, "item": {"x"}, "category": {"Food"}, "amount": {"-500"},
		},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(s, stdhttp.MethodPost, "/expenses", form)
			if rec.Code != stdhttp.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
		})
	}

	rows, _ := store.GetRows(context.Background(), core.TableExpenses)
	if len(rows) != 0 {
		t.Fatalf("invalid posts must not persist, got %d rows", len(rows))
	}
}

func TestEditEntry(t *testing.T) {
	s, store := testServer(t)
	seed(t, store, core.TableIncome,
		[]string{"id-1", "2024-01-05", "Gaji", "Salary", "100.000"},
	)

	form := url.Values{
		"date":     {"2024-01-06"},
		"item":     {"Gaji Pokok"},
		"category": {"Salary"},
		"amount":   {"110.000"},
	}
	rec := doRequest(s, stdhttp.MethodPost, "/edit/Income/0", form)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rows, _ := store.GetRows(context.Background(), core.TableIncome)
	e, err := core.LedgerSchema.Parse(rows[0])
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "id-1" {
		t.Fatalf("edit must preserve id, got %q", e.ID)
	}
	if e.Item != "Gaji Pokok" || e.Amount != 110000 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestEditRejectsUnknownTable(t *testing.T) {
	s, _ := testServer(t)
	form := url.Values{
		"date": {"2024-01-06"}, "item": {"x"}, "category": {"y"}, "amount": {"1.000"},
	}
	rec := doRequest(s, stdhttp.MethodPost, "/edit/Nope/0", form)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteEntryKeepsIndexesStable(t *testing.T) {
	s, store := testServer(t)
	seed(t, store, core.TableExpenses,
		[]string{"a", "2024-01-01", "satu", "Food", "10.000"},
		[]string{"b", "2024-01-02", "dua", "Food", "20.000"},
	)

	rec := doRequest(s, stdhttp.MethodPost, "/delete/Expenses/0", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rows, _ := store.GetRows(context.Background(), core.TableExpenses)
	if len(rows) != 2 {
		t.Fatalf("delete must blank in place, got %d rows", len(rows))
	}
	if len(rows[0]) != 0 {
		t.Fatalf("row 0 not cleared: %v", rows[0])
	}
	e, err := core.LedgerSchema.Parse(rows[1])
	if err != nil || e.ID != "b" {
		t.Fatalf("row 1 moved: %v %v", rows[1], err)
	}
}

func TestDeleteRejectsBadRowIndex(t *testing.T) {
	s, _ := testServer(t)
	for _, target := range []string{"/delete/Expenses/-1", "/delete/Expenses/abc", "/delete/Expenses"} {
		rec := doRequest(s, stdhttp.MethodPost, target, nil)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
	}
}

func TestLedgerPageRenders(t *testing.T) {
	s, store := testServer(t)
	seed(t, store, core.TableIncome,
		[]string{"a", "2024-05-03", "Gaji", "Salary", "100.000"},
	)

	rec := doRequest(s, stdhttp.MethodGet, "/income?year=2024&month=5", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Gaji", "Rp 100.000", "Mei"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestDashboardRenders(t *testing.T) {
	s, store := testServer(t)
	seed(t, store, core.TableIncome,
		[]string{"a", "2024-01-05", "Gaji", "Salary", "100.000"},
	)
	seed(t, store, core.TableExpenses,
		[]string{"b", "2024-01-20", "Makan", "Food", "30.000"},
	)

	rec := doRequest(s, stdhttp.MethodGet, "/dashboard?year=2024", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"2024-01", "Rp 100.000", "Rp 70.000"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestLedgerPageInvalidSelector(t *testing.T) {
	s, _ := testServer(t)
	for _, target := range []string{"/income?month=13", "/income?month=abc", "/income?year=0"} {
		rec := doRequest(s, stdhttp.MethodGet, target, nil)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := testServer(t)
	rec := doRequest(s, stdhttp.MethodGet, "/api/report?year=2024", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestPostRateLimit(t *testing.T) {
	s, _ := testServer(t)
	form := url.Values{
		"date": {"2024-03-15"}, "item": {"x"}, "category": {"Food"}, "amount": {"1.000"},
	}

	var limited bool
	for i := 0; i < 70; i++ {
		rec := doRequest(s, stdhttp.MethodPost, "/expenses", form)
		if rec.Code == stdhttp.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiting to trigger within 70 posts")
	}
}
