package persist

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	kv.Save(ctx, KeyBudgets, map[string]int64{"food": 10000})

	raw, ok := kv.Load(ctx, KeyBudgets)
	if !ok {
		t.Fatal("Load after Save reported absent")
	}
	var budgets map[string]int64
	if err := json.Unmarshal(raw, &budgets); err != nil {
		t.Fatalf("unmarshal stored value: %v", err)
	}
	if budgets["food"] != 10000 {
		t.Errorf("budgets[food] = %d, want 10000", budgets["food"])
	}
}

func TestMemoryMissingKey(t *testing.T) {
	if _, ok := NewMemory().Load(context.Background(), KeyTransactions); ok {
		t.Error("missing key must load as absent")
	}
}

func TestMemoryMalformedEntry(t *testing.T) {
	kv := NewMemory()
	kv.Put(KeyTransactions, []byte(`{"broken":`))

	if _, ok := kv.Load(context.Background(), KeyTransactions); ok {
		t.Error("malformed entry must load as absent, not fail")
	}
}

func TestMemoryUnmarshalableValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	// Channels cannot be marshalled; the save must be swallowed.
	kv.Save(ctx, KeySavingsGoal, make(chan int))

	if _, ok := kv.Load(ctx, KeySavingsGoal); ok {
		t.Error("failed save must leave the key absent")
	}
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	kv.Save(ctx, KeyLanguage, "en")

	raw, _ := kv.Load(ctx, KeyLanguage)
	raw[0] = 'X'

	fresh, ok := kv.Load(ctx, KeyLanguage)
	if !ok || string(fresh) != `"en"` {
		t.Errorf("stored entry mutated through returned slice: %s", fresh)
	}
}
