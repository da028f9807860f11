package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"khidma/internal/domain"
)

const recoveryInterval = time.Minute

// FailoverStore prefers the primary store and falls back to the
// secondary when the primary errors; the primary is probed again after
// recoveryInterval. Cache misses are not failures.
type FailoverStore struct {
	primary   domain.CacheStore
	fallback  domain.CacheStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStore(primary, fallback domain.CacheStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	s.isDown.Store(true)
	s.lastCheck.Store(time.Now().UnixNano())
}

func (s *FailoverStore) shouldProbe() bool {
	return time.Since(time.Unix(0, s.lastCheck.Load())) > recoveryInterval
}

func (s *FailoverStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.isDown.Load() || s.shouldProbe() {
		val, err := s.primary.Get(ctx, key)
		if err == nil || errors.Is(err, ErrMiss) {
			s.isDown.Store(false)
			return val, err
		}
		s.markDown(err)
	}
	return s.fallback.Get(ctx, key)
}

func (s *FailoverStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.isDown.Load() || s.shouldProbe() {
		err := s.primary.Set(ctx, key, value, ttl)
		if err == nil {
			s.isDown.Store(false)
			return nil
		}
		s.markDown(err)
	}
	return s.fallback.Set(ctx, key, value, ttl)
}

func (s *FailoverStore) Delete(ctx context.Context, keys ...string) error {
	// Delete from both so a recovered primary cannot serve stale lists.
	var primaryErr error
	if !s.isDown.Load() || s.shouldProbe() {
		primaryErr = s.primary.Delete(ctx, keys...)
		if primaryErr != nil {
			s.markDown(primaryErr)
		} else {
			s.isDown.Store(false)
		}
	}
	return s.fallback.Delete(ctx, keys...)
}
