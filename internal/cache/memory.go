package cache

import (
	"context"
	"sync"
	"time"
)

// ErrMiss is returned by stores when a key is absent or expired.
type missError struct{}

func (missError) Error() string { return "cache miss" }

// ErrMiss reports an absent or expired key.
var ErrMiss = missError{}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process CacheStore used standalone or as the
// failover fallback when Redis is down.
type MemoryStore struct {
	entries sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := s.entries.Load(key)
	if !ok {
		return nil, ErrMiss
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.entries.Delete(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries.Store(key, entry)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.entries.Delete(key)
	}
	return nil
}
