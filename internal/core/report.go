package core

import "time"

type (
	// MonthPair couples a "YYYY-MM" key with its bucket, for ordered
	// tabular rendering.
	MonthPair struct {
		Key    string      `json:"month"`
		Bucket MonthBucket `json:"totals"`
	}

	// AnnualReport is the full rollup for one year: ordered month pairs,
	// 12-element chart series, grand totals and growth metrics.
	AnnualReport struct {
		Year   int         `json:"year"`
		Months []MonthPair `json:"months"`

		IncomeSeries  []int64 `json:"income_series"`
		ExpenseSeries []int64 `json:"expense_series"`
		BalanceSeries []int64 `json:"balance_series"`

		TotalIncome   int64 `json:"total_income"`
		TotalExpenses int64 `json:"total_expenses"`
		TotalBalance  int64 `json:"total_balance"`

		IncomeGrowth  GrowthRate `json:"income_growth"`
		ExpenseGrowth GrowthRate `json:"expense_growth"`
		BalanceGrowth GrowthRate `json:"balance_growth"`

		IncomeTrend  []float64 `json:"income_trend"`
		ExpenseTrend []float64 `json:"expense_trend"`
		BalanceTrend []float64 `json:"balance_trend"`
	}
)

// BuildAnnualReport aggregates raw income and expense rows into the
// year's report. The month pairs come out ascending by key, which for a
// fixed year is calendar order.
func BuildAnnualReport(incomeRows, expenseRows [][]string, schema RowSchema, year int) AnnualReport {
	ys := SummarizeYear(incomeRows, expenseRows, schema, year)

	r := AnnualReport{
		Year:          year,
		Months:        make([]MonthPair, 0, 12),
		IncomeSeries:  make([]int64, 12),
		ExpenseSeries: make([]int64, 12),
		BalanceSeries: make([]int64, 12),
	}
	for i, b := range ys.Months {
		r.Months = append(r.Months, MonthPair{Key: MonthKey(year, time.Month(i+1)), Bucket: b})
		r.IncomeSeries[i] = b.Income
		r.ExpenseSeries[i] = b.Expenses
		r.BalanceSeries[i] = b.Balance
		r.TotalIncome += b.Income
		r.TotalExpenses += b.Expenses
		r.TotalBalance += b.Balance
	}

	r.IncomeGrowth = Growth(r.IncomeSeries)
	r.ExpenseGrowth = Growth(r.ExpenseSeries)
	r.BalanceGrowth = Growth(r.BalanceSeries)

	r.IncomeTrend = GrowthSeries(r.IncomeSeries)
	r.ExpenseTrend = GrowthSeries(r.ExpenseSeries)
	r.BalanceTrend = GrowthSeries(r.BalanceSeries)

	return r
}
