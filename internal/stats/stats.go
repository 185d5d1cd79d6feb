// Package stats computes the ledger's derived aggregates. Every function is
// pure over the transaction snapshot it is given and is recomputed on each
// call; at personal-ledger scale correctness beats incremental caching.
// Calendar bucketing uses the wall-clock date each timestamp carries.
package stats

import (
	"sort"
	"time"

	"tally/internal/core"
)

// Summary is the all-time ledger position: Balance = Income - Expense.
type Summary struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// MonthPoint is one calendar month of the series. Month is the
// first-of-month instant used for ordering; Label is the display form,
// e.g. "Oct 23".
type MonthPoint struct {
	Month   time.Time  `json:"month"`
	Label   string     `json:"label"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Surplus core.Money `json:"surplus"`
}

// CategoryAmount is a named expense bucket of the category breakdown.
type CategoryAmount struct {
	Name  string     `json:"name"`
	Value core.Money `json:"value"`
}

// TrendPoint is one month of the cumulative net-asset trend.
type TrendPoint struct {
	Month   time.Time  `json:"month"`
	Label   string     `json:"label"`
	Balance core.Money `json:"balance"`
}

// Totals sums the whole list by type. An empty list yields all zeros.
func Totals(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// CurrentMonthSavings is income minus expense restricted to the calendar
// month and year of now. The clock is caller-supplied for testability.
func CurrentMonthSavings(txs []core.Transaction, now time.Time) core.Money {
	var savings core.Money
	for _, tx := range txs {
		if !core.SameMonth(tx.Date, now) {
			continue
		}
		switch tx.Type {
		case core.Income:
			savings = savings.Add(tx.Amount)
		case core.Expense:
			savings = savings.Sub(tx.Amount)
		}
	}
	return savings
}

// MonthlySeries groups by calendar month and year, ordered by the
// first-of-month instant. Label order would misorder across year
// boundaries ("Dec 23" sorts after "Jan 24" lexically), so ordering never
// touches the label.
func MonthlySeries(txs []core.Transaction) []MonthPoint {
	buckets := make(map[int]*MonthPoint)
	for _, tx := range txs {
		key := tx.Date.Year()*12 + int(tx.Date.Month()) - 1
		p, ok := buckets[key]
		if !ok {
			month := time.Date(tx.Date.Year(), tx.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
			p = &MonthPoint{Month: month, Label: month.Format("Jan 06")}
			buckets[key] = p
		}
		switch tx.Type {
		case core.Income:
			p.Income = p.Income.Add(tx.Amount)
		case core.Expense:
			p.Expense = p.Expense.Add(tx.Amount)
		}
	}

	out := make([]MonthPoint, 0, len(buckets))
	for _, p := range buckets {
		p.Surplus = p.Income.Sub(p.Expense)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// CategoryExpenseBreakdown sums EXPENSE amounts per category name, sorted
// descending by value. Name resolution is the caller's concern (it knows
// the locale); ids the resolver cannot name are excluded outright. They
// cannot be labelled, so they must not merge into an anonymous bucket.
func CategoryExpenseBreakdown(txs []core.Transaction, nameFor func(categoryID string) (string, bool)) []CategoryAmount {
	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		name, ok := nameFor(tx.CategoryID)
		if !ok {
			continue
		}
		sums[name] = sums[name].Add(tx.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for name, value := range sums {
		out = append(out, CategoryAmount{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Cents != out[j].Value.Cents {
			return out[i].Value.Cents > out[j].Value.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NetAssetTrend produces exactly 12 monthly points (Jan..Dec of year) of
// cumulative net worth. The opening balance is the signed sum of all
// transactions dated strictly before the year; a year with no transactions
// yields 12 flat points at that balance.
//
// Each month rescans the list, so this is O(months*n). Fine at
// personal-ledger volume.
func NetAssetTrend(txs []core.Transaction, year int) []TrendPoint {
	var running core.Money
	for _, tx := range txs {
		if tx.Date.Year() >= year {
			continue
		}
		running = running.Add(signed(tx))
	}

	points := make([]TrendPoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		for _, tx := range txs {
			if tx.Date.Year() == year && tx.Date.Month() == m {
				running = running.Add(signed(tx))
			}
		}
		month := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		points = append(points, TrendPoint{Month: month, Label: month.Format("Jan 06"), Balance: running})
	}
	return points
}

func signed(tx core.Transaction) core.Money {
	if tx.Type == core.Expense {
		return core.Money{Cents: -tx.Amount.Cents}
	}
	return tx.Amount
}
