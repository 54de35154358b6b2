package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore persists entries in a local SQLite file, the on-device
// equivalent of the app's key/value storage.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteStore creates the kv table if needed and returns a store scoped
// to namespace. The store takes ownership of db.
func NewSQLiteStore(ctx context.Context, db *sql.DB, namespace string) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("migrate sqlite kv: %w", err)
	}
	return &SQLiteStore{db: db, namespace: namespace}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, positional(selectValueSQL), s.namespace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		if _, err := tx.ExecContext(ctx, positional(upsertValueSQL), s.namespace, k, v); err != nil {
			return fmt.Errorf("sqlite set %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, positional(deleteNamespaceSQL), s.namespace); err != nil {
		return fmt.Errorf("sqlite clear: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
