package stats

import (
	"testing"
	"time"

	"tally/internal/core"
)

func tx(cents int64, categoryID string, date time.Time, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		ID:         "tx-" + date.Format("20060102150405") + categoryID,
		Amount:     core.Money{Cents: cents},
		CategoryID: categoryID,
		Date:       date,
		Type:       typ,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func catalogName(id string) (string, bool) {
	c, ok := core.CategoryByID(id)
	if !ok {
		return "", false
	}
	return c.Name, true
}

func TestTotalsBalanceIdentity(t *testing.T) {
	txs := []core.Transaction{
		tx(300000, "salary", day(2024, 1, 25), core.Income),
		tx(4550, "food", day(2024, 1, 26), core.Expense),
		tx(12000, "transport", day(2024, 2, 2), core.Expense),
		tx(5000, "bonus", day(2024, 2, 10), core.Income),
	}

	got := Totals(txs)
	if got.Income.Cents != 305000 {
		t.Errorf("income = %d, want 305000", got.Income.Cents)
	}
	if got.Expense.Cents != 16550 {
		t.Errorf("expense = %d, want 16550", got.Expense.Cents)
	}
	if got.Balance.Cents != got.Income.Cents-got.Expense.Cents {
		t.Errorf("balance %d != income - expense", got.Balance.Cents)
	}
}

func TestAggregationsOnEmptyList(t *testing.T) {
	if got := Totals(nil); got != (Summary{}) {
		t.Errorf("Totals(nil) = %+v, want zeros", got)
	}
	if got := CurrentMonthSavings(nil, time.Now()); got.Cents != 0 {
		t.Errorf("CurrentMonthSavings(nil) = %d", got.Cents)
	}
	if got := MonthlySeries(nil); len(got) != 0 {
		t.Errorf("MonthlySeries(nil) = %v", got)
	}
	if got := CategoryExpenseBreakdown(nil, catalogName); len(got) != 0 {
		t.Errorf("CategoryExpenseBreakdown(nil) = %v", got)
	}
	if got := NetAssetTrend(nil, 2024); len(got) != 12 {
		t.Errorf("NetAssetTrend(nil) has %d points, want 12", len(got))
	}
}

func TestCurrentMonthSavings(t *testing.T) {
	now := day(2024, 3, 15)
	txs := []core.Transaction{
		tx(200000, "salary", day(2024, 3, 1), core.Income),
		tx(50000, "housing", day(2024, 3, 5), core.Expense),
		tx(99999, "food", day(2024, 2, 28), core.Expense),    // previous month
		tx(100000, "salary", day(2023, 3, 10), core.Income),  // same month, other year
		tx(7000, "shopping", day(2024, 4, 1), core.Expense),  // future month
	}

	if got := CurrentMonthSavings(txs, now); got.Cents != 150000 {
		t.Errorf("savings = %d, want 150000", got.Cents)
	}
}

func TestMonthlySeriesChronologicalAcrossYears(t *testing.T) {
	// Inserted out of order, spanning a year boundary: label-sorting would
	// put "Dec 23" after "Jan 24".
	txs := []core.Transaction{
		tx(1000, "food", day(2024, 1, 5), core.Expense),
		tx(2000, "salary", day(2023, 12, 20), core.Income),
		tx(3000, "food", day(2023, 12, 2), core.Expense),
		tx(4000, "salary", day(2024, 1, 15), core.Income),
	}

	series := MonthlySeries(txs)
	if len(series) != 2 {
		t.Fatalf("series has %d months, want 2", len(series))
	}
	if series[0].Label != "Dec 23" || series[1].Label != "Jan 24" {
		t.Fatalf("series order = [%s, %s], want chronological", series[0].Label, series[1].Label)
	}

	dec := series[0]
	if dec.Income.Cents != 2000 || dec.Expense.Cents != 3000 || dec.Surplus.Cents != -1000 {
		t.Errorf("Dec 23 = %+v", dec)
	}
	jan := series[1]
	if jan.Income.Cents != 4000 || jan.Expense.Cents != 1000 || jan.Surplus.Cents != 3000 {
		t.Errorf("Jan 24 = %+v", jan)
	}
}

func TestCategoryExpenseBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx(5000, "food", day(2024, 1, 1), core.Expense),
		tx(2500, "food", day(2024, 1, 2), core.Expense),
		tx(10000, "housing", day(2024, 1, 3), core.Expense),
		tx(99999, "salary", day(2024, 1, 4), core.Income),      // income excluded
		tx(1234, "ghost-category", day(2024, 1, 5), core.Expense), // unresolvable excluded
	}

	got := CategoryExpenseBreakdown(txs, catalogName)
	if len(got) != 2 {
		t.Fatalf("breakdown has %d buckets, want 2: %v", len(got), got)
	}
	if got[0].Name != "Housing" || got[0].Value.Cents != 10000 {
		t.Errorf("top bucket = %+v, want Housing 10000", got[0])
	}
	if got[1].Name != "Food & Dining" || got[1].Value.Cents != 7500 {
		t.Errorf("second bucket = %+v, want Food & Dining 7500", got[1])
	}
}

func TestUnknownCategoryCountsInTotalsOnly(t *testing.T) {
	txs := []core.Transaction{tx(1234, "ghost-category", day(2024, 1, 5), core.Expense)}

	if got := Totals(txs).Expense.Cents; got != 1234 {
		t.Errorf("Totals must include unknown categories, expense = %d", got)
	}
	if got := CategoryExpenseBreakdown(txs, catalogName); len(got) != 0 {
		t.Errorf("breakdown must exclude unknown categories, got %v", got)
	}
}

func TestNetAssetTrend(t *testing.T) {
	txs := []core.Transaction{
		// Prior years set the opening balance: +10000 - 4000 = 6000.
		tx(10000, "salary", day(2022, 6, 1), core.Income),
		tx(4000, "food", day(2023, 11, 12), core.Expense),
		// December-only activity within the year under inspection.
		tx(2000, "salary", day(2024, 12, 5), core.Income),
		tx(500, "food", day(2024, 12, 9), core.Expense),
		// The following year must not count.
		tx(77777, "salary", day(2025, 1, 1), core.Income),
	}

	points := NetAssetTrend(txs, 2024)
	if len(points) != 12 {
		t.Fatalf("trend has %d points, want 12", len(points))
	}

	for i := 0; i < 11; i++ {
		if points[i].Balance.Cents != 6000 {
			t.Errorf("point[%d] = %d, want opening balance 6000", i, points[i].Balance.Cents)
		}
	}
	if points[11].Balance.Cents != 7500 {
		t.Errorf("December = %d, want 7500", points[11].Balance.Cents)
	}

	// The first-to-last delta is the year's signed sum, negated.
	yearSum := int64(2000 - 500)
	if points[0].Balance.Cents-points[11].Balance.Cents != -yearSum {
		t.Errorf("first minus last = %d, want %d",
			points[0].Balance.Cents-points[11].Balance.Cents, -yearSum)
	}
}

func TestNetAssetTrendEmptyYear(t *testing.T) {
	txs := []core.Transaction{
		tx(5000, "salary", day(2020, 1, 1), core.Income),
	}
	points := NetAssetTrend(txs, 2024)
	if len(points) != 12 {
		t.Fatalf("trend has %d points, want 12", len(points))
	}
	for i, p := range points {
		if p.Balance.Cents != 5000 {
			t.Errorf("point[%d] = %d, want flat 5000", i, p.Balance.Cents)
		}
	}
	if points[0].Label != "Jan 24" || points[11].Label != "Dec 24" {
		t.Errorf("labels = %s..%s", points[0].Label, points[11].Label)
	}
}
