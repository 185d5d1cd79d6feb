// Package persist is the durable key-value layer under the transaction
// store. It holds a fixed, small set of named JSON documents; the in-memory
// store remains authoritative, so every failure here is contained: a missing
// or corrupt entry loads as absent, and a failed save is logged and dropped.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// The complete set of persisted keys.
const (
	KeyTransactions = "transactions"
	KeyBudgets      = "budgets"
	KeySavingsGoal  = "savingsGoal"
	KeyLanguage     = "language"
)

// KV is the persistence adapter contract. Load reports absent (false) for
// missing or malformed entries and never surfaces an error; Save is
// fire-and-forget write-through.
type KV interface {
	Load(ctx context.Context, key string) (json.RawMessage, bool)
	Save(ctx context.Context, key string, value any)
}

// Memory is a KV backend for tests and zero-setup runs.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !json.Valid(raw) {
		slog.WarnContext(ctx, "Discarding malformed persisted entry", "key", key)
		return nil, false
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true
}

func (m *Memory) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.ErrorContext(ctx, "Persistence save failed", "key", key, "error", err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
}

// Put stores raw bytes directly, bypassing marshalling. Test hook for
// simulating corrupt entries.
func (m *Memory) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
}
