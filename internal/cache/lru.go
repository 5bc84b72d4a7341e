package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"uk.co.dudmesh.emprendenet/internal/model"
)

// LRUStore is an in-process Store bounded to a fixed number of entries.
type LRUStore struct {
	entries *lru.Cache[string, []byte]
}

func NewLRUStore(size int) (*LRUStore, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}
	return &LRUStore{entries}, nil
}

func (s *LRUStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := s.entries.Get(key)
	if !ok {
		return nil, model.ErrorCacheMiss
	}
	return value, nil
}

func (s *LRUStore) Set(ctx context.Context, key string, value []byte) error {
	s.entries.Add(key, value)
	return nil
}

func (s *LRUStore) Delete(ctx context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

func (s *LRUStore) DeleteMulti(ctx context.Context, keys []string) error {
	for _, key := range keys {
		s.entries.Remove(key)
	}
	return nil
}

func (s *LRUStore) Flush(ctx context.Context) error {
	s.entries.Purge()
	return nil
}

func (s *LRUStore) Close() error {
	s.entries.Purge()
	return nil
}

func (s *LRUStore) Len() int {
	return s.entries.Len()
}
