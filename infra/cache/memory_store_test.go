package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infracache "github.com/chaptertools/treasury/infra/cache"
	"github.com/chaptertools/treasury/pkg/cache"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := infracache.NewMemoryStore()

	t.Run("get of absent key misses", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
		v, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		now := time.Now()
		store.SetClock(func() time.Time { return now })
		require.NoError(t, store.Set(ctx, "ttl", []byte("v"), time.Minute))

		now = now.Add(61 * time.Second)
		_, err := store.Get(ctx, "ttl")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "d", []byte("v"), time.Minute))
		require.NoError(t, store.Delete(ctx, "d", "never-existed"))
		require.NoError(t, store.Delete(ctx, "d"))
		_, err := store.Get(ctx, "d")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})

	t.Run("flush drops everything", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, store.Flush(ctx))
		_, err := store.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrMiss)
		_, err = store.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrMiss)
	})
}

func TestMemoryStoreClose(t *testing.T) {
	ctx := context.Background()
	store := infracache.NewMemoryStore()

	store.Close()
	store.Close()

	// The store keeps serving after the janitor is stopped.
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
