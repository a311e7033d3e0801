package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"kasku/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kasku.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testEntry(id string, day int) core.Entry {
	return core.Entry{
		ID:       id,
		Date:     time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Item:     "Makan siang",
		Category: "Food",
		Amount:   25000,
	}
}

func TestAppendGetList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.AppendEntry(ctx, core.TableExpenses, testEntry("a", 1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	id2, err := repo.AppendEntry(ctx, core.TableExpenses, testEntry("b", 2))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("rowids not increasing: %d %d", id1, id2)
	}

	got, err := repo.GetEntry(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Entry.ID != "a" || got.Entry.Amount != 25000 || got.SyncStatus != SyncPending {
		t.Fatalf("entry = %+v", got)
	}
	if got.Entry.Date.Format(core.DateLayout) != "2024-03-01" {
		t.Fatalf("date = %v", got.Entry.Date)
	}

	list, err := repo.ListEntries(ctx, core.TableExpenses)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Entry.ID != "a" || list[1].Entry.ID != "b" {
		t.Fatalf("list order wrong: %+v", list)
	}

	// Other tables stay empty.
	list, err = repo.ListEntries(ctx, core.TableIncome)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty income list, got %v (err=%v)", list, err)
	}
}

func TestUpdateAndSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.AppendEntry(ctx, core.TableIncome, testEntry("a", 1))
	_ = repo.MarkSynced(ctx, id)

	updated := testEntry("a", 1)
	updated.Amount = 90000
	if err := repo.UpdateEntry(ctx, id, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.GetEntry(ctx, id)
	if got.Entry.Amount != 90000 {
		t.Fatalf("amount = %d", got.Entry.Amount)
	}
	// Updates go back to pending so the worker re-mirrors them.
	if got.SyncStatus != SyncPending {
		t.Fatalf("status = %s", got.SyncStatus)
	}

	if err := repo.SoftDeleteEntry(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := repo.ListEntries(ctx, core.TableIncome)
	if len(list) != 0 {
		t.Fatalf("deleted entry still listed: %+v", list)
	}
	// Still readable by rowid for the sync worker.
	if _, err := repo.GetEntry(ctx, id); err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if err := repo.SoftDeleteEntry(ctx, id); err == nil {
		t.Fatal("second delete should fail")
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, _ := repo.AppendEntry(ctx, core.TableExpenses, testEntry("a", 1))
	id2, _ := repo.AppendEntry(ctx, core.TableExpenses, testEntry("b", 2))

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d", len(pending))
	}

	_ = repo.MarkSynced(ctx, id1)
	_ = repo.MarkSyncError(ctx, id2)

	pending, _ = repo.PendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending after marks = %+v", pending)
	}

	e1, _ := repo.GetEntry(ctx, id1)
	e2, _ := repo.GetEntry(ctx, id2)
	if e1.SyncStatus != SyncDone || e2.SyncStatus != SyncError {
		t.Fatalf("statuses = %s %s", e1.SyncStatus, e2.SyncStatus)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceCategories(ctx, "income", []string{"Salary", "Bonus"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ReplaceCategories(ctx, "income", []string{"Bonus", "Salary", "Other"}); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	got, err := repo.Categories(ctx, "income")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Bonus", "Salary", "Other"}) {
		t.Fatalf("got %v", got)
	}

	n, err := repo.CategoryCount(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count = %d (err=%v)", n, err)
	}
}
