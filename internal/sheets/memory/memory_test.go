package memory

import (
	"context"
	"reflect"
	"testing"

	"kasku/internal/core"
)

func TestAppendAndGetRows(t *testing.T) {
	s := New(map[string][]string{"income": {"Salary"}})
	ctx := context.Background()

	ref, err := s.AppendRow(ctx, core.TableIncome, []string{"1", "2024-01-05", "Gaji", "Salary", "100000"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref == "" {
		t.Fatal("expected non-empty ref")
	}

	rows, err := s.GetRows(ctx, core.TableIncome)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 1 || rows[0][2] != "Gaji" {
		t.Fatalf("rows = %v", rows)
	}

	// Empty table is an empty slice, not an error.
	rows, err = s.GetRows(ctx, core.TableExpenses)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty, got %v (err=%v)", rows, err)
	}

	if _, err := s.GetRows(ctx, "Nope"); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestUpdateAndDeleteRow(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	_, _ = s.AppendRow(ctx, core.TableExpenses, []string{"1", "2024-01-05", "a", "Food", "100"})
	_, _ = s.AppendRow(ctx, core.TableExpenses, []string{"2", "2024-01-06", "b", "Food", "200"})

	if err := s.UpdateRow(ctx, core.TableExpenses, 0, []string{"1", "2024-01-05", "a2", "Food", "150"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.DeleteRow(ctx, core.TableExpenses, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.UpdateRow(ctx, core.TableExpenses, 5, nil); err == nil {
		t.Fatal("expected out of range error")
	}

	rows, _ := s.GetRows(ctx, core.TableExpenses)
	if rows[0][2] != "a2" {
		t.Fatalf("update not applied: %v", rows[0])
	}
	// Deleted rows are blanked in place, indexes stay stable.
	if len(rows) != 2 || len(rows[1]) != 0 {
		t.Fatalf("delete should blank the row: %v", rows)
	}
}

func TestGetCategories(t *testing.T) {
	s := New(map[string][]string{"income": {"Salary", "Salary", "Bonus"}})
	got, err := s.GetCategories(context.Background(), "income")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Salary", "Bonus"}) {
		t.Fatalf("got %v", got)
	}
	if _, err := s.GetCategories(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
