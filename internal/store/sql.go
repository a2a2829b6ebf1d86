package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hamar-padhai/progression/internal/database"
)

// SQLStore keeps values in the progress_kv table.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM progress_kv WHERE storage_key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Dialect.UpsertProgressQuery(), key, string(value))
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
