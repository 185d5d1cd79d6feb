package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite stores each persisted key as one row of a kv_store table.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, key string) (json.RawMessage, bool) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		slog.ErrorContext(ctx, "Persistence load failed", "key", key, "error", err)
		return nil, false
	}
	if !json.Valid(raw) {
		slog.WarnContext(ctx, "Discarding malformed persisted entry", "key", key)
		return nil, false
	}
	return json.RawMessage(raw), true
}

func (s *SQLite) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.ErrorContext(ctx, "Persistence save failed", "key", key, "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		// Write-through is best effort; the in-memory state stays
		// authoritative and the next mutation retries with fresher data.
		slog.ErrorContext(ctx, "Persistence save failed", "key", key, "error", err)
		return
	}

	slog.DebugContext(ctx, "Persisted entry", "key", key, "bytes", len(data))
}
