// Package store owns the in-memory ledger state: the transaction list, the
// budget map, the savings goal and the display language. All mutation goes
// through it; derived views (stats, sorting, export) work on read-only
// snapshots. Every successful mutation is written through to the
// persistence adapter and optionally announced on the event publisher, both
// best effort.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/persist"

	"github.com/google/uuid"
)

// Publisher receives change notifications after successful mutations.
// Publish failures never fail the mutation.
type Publisher interface {
	TransactionCreated(ctx context.Context, tx core.Transaction) error
	TransactionUpdated(ctx context.Context, tx core.Transaction) error
	TransactionDeleted(ctx context.Context, id string) error
	LedgerCleared(ctx context.Context) error
}

// Changes is a partial update for a transaction. Nil fields are preserved.
type Changes struct {
	Amount     *core.Money
	CategoryID *string
	Date       *time.Time
	Note       *string
	Type       *core.TransactionType
}

type Store struct {
	kv  persist.KV
	pub Publisher

	mu           sync.Mutex
	transactions []core.Transaction
	budgets      map[string]core.Money
	goal         core.Money
	language     core.Language
	revision     uint64
}

func New(kv persist.KV, pub Publisher) *Store {
	return &Store{
		kv:       kv,
		pub:      pub,
		budgets:  make(map[string]core.Money),
		language: core.English,
	}
}

// LoadPersisted seeds the store from the persistence adapter. Absent or
// unreadable entries fall back to safe defaults; startup never fails on
// bad data.
func (s *Store) LoadPersisted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.kv.Load(ctx, persist.KeyTransactions); ok {
		var txs []core.Transaction
		if err := json.Unmarshal(raw, &txs); err != nil {
			slog.WarnContext(ctx, "Ignoring unreadable transactions entry", "error", err)
		} else {
			s.transactions = txs
		}
	}

	if raw, ok := s.kv.Load(ctx, persist.KeyBudgets); ok {
		var budgets map[string]core.Money
		if err := json.Unmarshal(raw, &budgets); err != nil {
			slog.WarnContext(ctx, "Ignoring unreadable budgets entry", "error", err)
		} else if budgets != nil {
			s.budgets = budgets
		}
	}

	if raw, ok := s.kv.Load(ctx, persist.KeySavingsGoal); ok {
		var goal core.Money
		if err := json.Unmarshal(raw, &goal); err != nil {
			slog.WarnContext(ctx, "Ignoring unreadable savings goal entry", "error", err)
		} else if goal.Cents >= 0 {
			s.goal = goal
		}
	}

	if raw, ok := s.kv.Load(ctx, persist.KeyLanguage); ok {
		var lang string
		if err := json.Unmarshal(raw, &lang); err != nil {
			slog.WarnContext(ctx, "Ignoring unreadable language entry", "error", err)
		} else {
			s.language = core.ParseLanguage(lang)
		}
	}

	slog.InfoContext(ctx, "Ledger state loaded",
		"transactions", len(s.transactions),
		"budgets", len(s.budgets),
		"goal_cents", s.goal.Cents,
		"language", s.language)
}

// Create validates and records a new transaction at the head of the list.
// Storage order carries no display meaning; ordering is always derived by
// the view layer.
func (s *Store) Create(ctx context.Context, amount core.Money, categoryID string, date time.Time, note string, typ core.TransactionType) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         uuid.NewString(),
		Amount:     amount,
		CategoryID: categoryID,
		Date:       date,
		Note:       note,
		Type:       typ,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.transactions = append([]core.Transaction{tx}, s.transactions...)
	s.revision++
	s.saveTransactionsLocked(ctx)
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.TransactionCreated(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish create event", "id", tx.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID, "type", tx.Type, "amount_cents", tx.Amount.Cents, "category", tx.CategoryID)
	return tx, nil
}

// Update patches the transaction with the given id. It returns whether a
// match was found; an invalid patch (non-positive amount, unknown type,
// zero date) is rejected with an error and leaves the store untouched.
func (s *Store) Update(ctx context.Context, id string, ch Changes) (bool, error) {
	s.mu.Lock()

	idx := -1
	for i, tx := range s.transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	patched := s.transactions[idx]
	if ch.Amount != nil {
		patched.Amount = *ch.Amount
	}
	if ch.CategoryID != nil {
		patched.CategoryID = *ch.CategoryID
	}
	if ch.Date != nil {
		patched.Date = *ch.Date
	}
	if ch.Note != nil {
		patched.Note = *ch.Note
	}
	if ch.Type != nil {
		patched.Type = *ch.Type
	}
	if err := patched.Validate(); err != nil {
		s.mu.Unlock()
		return true, err
	}

	s.transactions[idx] = patched
	s.revision++
	s.saveTransactionsLocked(ctx)
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.TransactionUpdated(ctx, patched); err != nil {
			slog.ErrorContext(ctx, "Failed to publish update event", "id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return true, nil
}

// Delete removes the transaction with the given id, reporting whether a
// match was found. The write-through happens even when the list becomes
// empty.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()

	idx := -1
	for i, tx := range s.transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)
	s.revision++
	s.saveTransactionsLocked(ctx)
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.TransactionDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event", "id", id, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return true
}

// ClearAll empties the transaction list and budget map and resets the
// savings goal, as one logical operation. The language setting survives.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.transactions = nil
	s.budgets = make(map[string]core.Money)
	s.goal = core.Money{}
	s.revision++
	s.saveTransactionsLocked(ctx)
	s.saveBudgetsLocked(ctx)
	s.kv.Save(ctx, persist.KeySavingsGoal, s.goal)
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.LedgerCleared(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to publish clear event", "error", err)
		}
	}

	slog.InfoContext(ctx, "Ledger cleared")
}

// SetBudget sets or overwrites the monthly limit for a category. Invalid
// input (NaN, infinity, negative) stores exactly zero rather than failing.
func (s *Store) SetBudget(ctx context.Context, categoryID string, amount float64) {
	limit := core.MoneyFromFloat(amount)

	s.mu.Lock()
	s.budgets[categoryID] = limit
	s.revision++
	s.saveBudgetsLocked(ctx)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Budget set", "category", categoryID, "limit_cents", limit.Cents)
}

// SetSavingsGoal applies the same clamp-to-zero policy as SetBudget. Zero
// means no goal configured.
func (s *Store) SetSavingsGoal(ctx context.Context, amount float64) {
	goal := core.MoneyFromFloat(amount)

	s.mu.Lock()
	s.goal = goal
	s.revision++
	s.kv.Save(ctx, persist.KeySavingsGoal, goal)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Savings goal set", "goal_cents", goal.Cents)
}

// SetLanguage switches the display locale. Formatting only; stored data
// keeps its shape.
func (s *Store) SetLanguage(ctx context.Context, lang core.Language) {
	if !lang.IsValid() {
		lang = core.English
	}

	s.mu.Lock()
	s.language = lang
	s.revision++
	s.kv.Save(ctx, persist.KeyLanguage, string(lang))
	s.mu.Unlock()

	slog.InfoContext(ctx, "Language set", "language", lang)
}

// Transactions returns a snapshot copy of the list in storage order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Budgets returns a snapshot copy of the budget map.
func (s *Store) Budgets() map[string]core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.Money, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

func (s *Store) SavingsGoal() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goal
}

func (s *Store) Language() core.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Revision is a monotonically increasing counter bumped on every mutation.
// Derived-view caches key on it instead of tracking individual changes.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) saveTransactionsLocked(ctx context.Context) {
	snapshot := make([]core.Transaction, len(s.transactions))
	copy(snapshot, s.transactions)
	s.kv.Save(ctx, persist.KeyTransactions, snapshot)
}

func (s *Store) saveBudgetsLocked(ctx context.Context) {
	snapshot := make(map[string]core.Money, len(s.budgets))
	for k, v := range s.budgets {
		snapshot[k] = v
	}
	s.kv.Save(ctx, persist.KeyBudgets, snapshot)
}
