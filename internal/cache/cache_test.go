package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStorePrefixAndMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "khidma")
	ctx := context.Background()

	_, err := store.Get(ctx, "services:all")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "services:all", []byte(`[]`), time.Minute))
	assert.True(t, mr.Exists("khidma:services:all"))

	val, err := store.Get(ctx, "services:all")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), val)

	require.NoError(t, store.Delete(ctx, "services:all"))
	_, err = store.Get(ctx, "services:all")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStoreHonorsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "khidma")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) Delete(ctx context.Context, keys ...string) error {
	return errors.New("connection refused")
}

func TestFailoverFallsBackWhenPrimaryErrors(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryStore()
	store := NewFailoverStore(brokenStore{}, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestFailoverMissIsNotFailure(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryStore()
	fallback := NewMemoryStore()
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	// Seed only the fallback; a primary miss must not be treated as an
	// outage, so the miss is answered by the fallback directly.
	require.NoError(t, fallback.Set(ctx, "k", []byte("v"), 0))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.False(t, store.isDown.Load())
}

func TestFailoverDeleteReachesBothStores(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryStore()
	fallback := NewMemoryStore()
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, primary.Set(ctx, "k", []byte("a"), 0))
	require.NoError(t, fallback.Set(ctx, "k", []byte("b"), 0))

	require.NoError(t, store.Delete(ctx, "k"))

	_, err := primary.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = fallback.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
