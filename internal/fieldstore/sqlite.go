package fieldstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"storyreel/internal/database"
)

// SQLiteBackend persists field values in the field_values table.
type SQLiteBackend struct {
	db *database.DB
}

// NewSQLiteBackend binds a backend to an opened database.
func NewSQLiteBackend(db *database.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (s *SQLiteBackend) conn() (*database.DB, error) {
	if s == nil || s.db == nil || s.db.DB == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

func (s *SQLiteBackend) Get(ctx context.Context, store, key string) (string, bool, error) {
	db, err := s.conn()
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM field_values WHERE store = ? AND key = ?`, store, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select field value: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteBackend) Set(ctx context.Context, store, key, value string) error {
	return s.SetMany(ctx, store, map[string]string{key: value})
}

func (s *SQLiteBackend) SetMany(ctx context.Context, store string, values map[string]string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin field tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO field_values (store, key, value, updated_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(store, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			store, key, values[key], timestamp,
		); err != nil {
			return fmt.Errorf("upsert field %s.%s: %w", store, key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit field tx: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, store, key string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM field_values WHERE store = ? AND key = ?`, store, key); err != nil {
		return fmt.Errorf("delete field value: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Keys(ctx context.Context, store string) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT key FROM field_values WHERE store = ? ORDER BY key`, store)
	if err != nil {
		return nil, fmt.Errorf("list field keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan field key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
