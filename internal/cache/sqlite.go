package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"uk.co.dudmesh.emprendenet/internal/model"
)

// SQLiteStore keeps entries in a shared in-memory sqlite database. Every
// store opened with the same name sees the same entries.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(name string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// shared cache mode locks whole tables
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`create table if not exists kv_cache (
		cache_key text primary key,
		value blob not null
	)`)
	if err != nil {
		return fmt.Errorf("creating cache table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_cache WHERE cache_key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorCacheMiss
		}
		return nil, fmt.Errorf("getting cache entry: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO kv_cache (cache_key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_cache WHERE cache_key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM kv_cache WHERE cache_key IN (?)", keys)
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("deleting cache entries: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Flush(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_cache")
	if err != nil {
		return fmt.Errorf("flushing cache: %w", err)
	}
	return nil
}
