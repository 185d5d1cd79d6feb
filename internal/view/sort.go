// Package view derives display orderings from the transaction snapshot:
// a selectable sort policy and optional calendar-day grouping with per-day
// subtotals.
package view

import (
	"sort"
	"strings"
	"time"

	"tally/internal/core"
)

type SortOption string

const (
	DateDesc   SortOption = "DATE_DESC" // default
	DateAsc    SortOption = "DATE_ASC"
	AmountDesc SortOption = "AMOUNT_DESC"
	AmountAsc  SortOption = "AMOUNT_ASC"
	// TypeExpense and TypeIncome order one type before the other; within a
	// type, later dates come first.
	TypeExpense SortOption = "TYPE_EXPENSE"
	TypeIncome  SortOption = "TYPE_INCOME"
)

// ParseSortOption falls back to the default for unknown input.
func ParseSortOption(s string) SortOption {
	switch SortOption(strings.ToUpper(strings.TrimSpace(s))) {
	case DateAsc:
		return DateAsc
	case AmountDesc:
		return AmountDesc
	case AmountAsc:
		return AmountAsc
	case TypeExpense:
		return TypeExpense
	case TypeIncome:
		return TypeIncome
	default:
		return DateDesc
	}
}

// IsDateOrder reports whether the option orders purely by date. Day
// grouping only reads sensibly under a date order.
func (o SortOption) IsDateOrder() bool {
	return o == DateDesc || o == DateAsc
}

// DailyGroup is one calendar day of transactions in display order, with
// running subtotals accumulated as the group is built. Derived only, never
// persisted.
type DailyGroup struct {
	Date         time.Time          `json:"date"`
	Transactions []core.Transaction `json:"transactions"`
	TotalIncome  core.Money         `json:"totalIncome"`
	TotalExpense core.Money         `json:"totalExpense"`
}

// Sort returns a new slice ordered per the option. The input is never
// mutated; the sort is stable, so equal keys keep their snapshot order.
func Sort(txs []core.Transaction, opt SortOption) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)

	var less func(a, b core.Transaction) bool
	switch opt {
	case DateAsc:
		less = func(a, b core.Transaction) bool { return a.Date.Before(b.Date) }
	case AmountDesc:
		less = func(a, b core.Transaction) bool { return a.Amount.Cents > b.Amount.Cents }
	case AmountAsc:
		less = func(a, b core.Transaction) bool { return a.Amount.Cents < b.Amount.Cents }
	case TypeExpense:
		less = typeFirst(core.Expense)
	case TypeIncome:
		less = typeFirst(core.Income)
	default: // DateDesc
		less = func(a, b core.Transaction) bool { return b.Date.Before(a.Date) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func typeFirst(first core.TransactionType) func(a, b core.Transaction) bool {
	return func(a, b core.Transaction) bool {
		if a.Type != b.Type {
			return a.Type == first
		}
		return b.Date.Before(a.Date)
	}
}

// GroupByDay buckets an already-sorted list into calendar days. Group order
// follows first occurrence in the input; the groups are never re-sorted,
// so they inherit whatever date order the caller chose.
func GroupByDay(sorted []core.Transaction) []DailyGroup {
	var groups []DailyGroup
	index := make(map[string]int)

	for _, tx := range sorted {
		key := tx.Date.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DailyGroup{
				Date: time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, tx.Date.Location()),
			})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		switch tx.Type {
		case core.Income:
			g.TotalIncome = g.TotalIncome.Add(tx.Amount)
		case core.Expense:
			g.TotalExpense = g.TotalExpense.Add(tx.Amount)
		}
	}

	return groups
}
