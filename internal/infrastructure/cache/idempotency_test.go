package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
)

func newStore(t *testing.T, ttl time.Duration) (*cache.IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewIdempotencyStore(client, ttl), mr
}

func TestIdempotency_ReservaUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, time.Minute)

	require.NoError(t, s.Reserve(ctx, "biz", "k1"))
	assert.ErrorIs(t, s.Reserve(ctx, "biz", "k1"), cache.ErrKeyInUse)
	assert.NoError(t, s.Reserve(ctx, "otro", "k1"), "las llaves son por negocio")
}

func TestIdempotency_ReleasePermiteReintentar(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, time.Minute)

	require.NoError(t, s.Reserve(ctx, "biz", "k1"))
	require.NoError(t, s.Release(ctx, "biz", "k1"))
	assert.NoError(t, s.Reserve(ctx, "biz", "k1"))
}

func TestIdempotency_ExpiraConTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, time.Minute)

	require.NoError(t, s.Reserve(ctx, "biz", "k1"))
	mr.FastForward(2 * time.Minute)
	assert.NoError(t, s.Reserve(ctx, "biz", "k1"))
}

func TestIdempotency_NilEsInerte(t *testing.T) {
	var s *cache.IdempotencyStore
	assert.NoError(t, s.Reserve(context.Background(), "biz", "k1"))
	assert.NoError(t, s.Release(context.Background(), "biz", "k1"))
}
