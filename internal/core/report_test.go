package core

import "testing"

func TestBuildAnnualReport(t *testing.T) {
	income := [][]string{
		row("1", "2024-01-05", "Gaji", "Food", "100.000"),
		row("2", "2024-02-10", "Gaji", "Food", "50.000"),
	}
	r := BuildAnnualReport(income, nil, LedgerSchema, 2024)

	if len(r.Months) != 12 {
		t.Fatalf("expected 12 month pairs, got %d", len(r.Months))
	}
	if r.Months[0].Key != "2024-01" || r.Months[11].Key != "2024-12" {
		t.Fatalf("month keys out of order: %v ... %v", r.Months[0].Key, r.Months[11].Key)
	}
	if r.IncomeSeries[0] != 100000 || r.IncomeSeries[1] != 50000 {
		t.Fatalf("income series wrong: %v", r.IncomeSeries)
	}
	for m := 2; m < 12; m++ {
		if r.IncomeSeries[m] != 0 {
			t.Fatalf("month %d expected 0, got %d", m+1, r.IncomeSeries[m])
		}
	}
	if r.TotalIncome != 150000 {
		t.Fatalf("total income = %d", r.TotalIncome)
	}
	if r.TotalExpenses != 0 || r.TotalBalance != 150000 {
		t.Fatalf("totals wrong: exp=%d bal=%d", r.TotalExpenses, r.TotalBalance)
	}

	// Growth of income: 100000 -> 50000 = -50%.
	if !r.IncomeGrowth.Valid || r.IncomeGrowth.Pct != -50.0 {
		t.Fatalf("income growth = %+v", r.IncomeGrowth)
	}
	// No non-zero expense history.
	if r.ExpenseGrowth.Valid {
		t.Fatalf("expense growth should be undefined: %+v", r.ExpenseGrowth)
	}

	if len(r.IncomeTrend) != 12 || r.IncomeTrend[0] != 0 {
		t.Fatalf("income trend malformed: %v", r.IncomeTrend)
	}
	if r.IncomeTrend[1] != -50.0 {
		t.Fatalf("income trend feb = %v", r.IncomeTrend[1])
	}
}

func TestBuildAnnualReportBalanceSeries(t *testing.T) {
	income := [][]string{row("1", "2024-01-01", "a", "c", "100.000")}
	expenses := [][]string{
		row("2", "2024-01-02", "b", "c", "150.000"),
		row("3", "2024-02-02", "b", "c", "25.000"),
	}
	r := BuildAnnualReport(income, expenses, LedgerSchema, 2024)
	if r.BalanceSeries[0] != -50000 || r.BalanceSeries[1] != -25000 {
		t.Fatalf("balance series = %v", r.BalanceSeries)
	}
	// Negative previous balance: trend uses absolute denominator.
	if r.BalanceTrend[1] != 50.0 {
		t.Fatalf("balance trend = %v", r.BalanceTrend)
	}
	// Single-value growth uses the signed denominator.
	if !r.BalanceGrowth.Valid || r.BalanceGrowth.Pct != -50.0 {
		t.Fatalf("balance growth = %+v", r.BalanceGrowth)
	}
}
