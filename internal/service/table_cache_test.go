package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTableCache(store *memStore, origin *fakeOrigin, c *clock) *TableCache {
	return NewTableCache(store, origin, TableCacheOptions{
		Expiry:     2 * time.Hour,
		MaxEntries: 50,
		Now:        c.Now,
	})
}

func TestTableCacheTiers(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	origin.set("live", "Stage", `[{"no":1}]`)
	tc := newTestTableCache(store, origin, c)

	t.Run("miss fetches and persists", func(t *testing.T) {
		data, err := tc.Get(ctx, "live", "Stage")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"no":1}]`, string(data))
		assert.Equal(t, 1, origin.count("live", "Stage"))

		tc.Wait()
		e, ok := store.entry("live", "Stage")
		require.True(t, ok)
		assert.True(t, e.IsValid)
		assert.Equal(t, Checksum(data), e.Checksum)
		assert.Equal(t, c.Now(), e.FetchedAt)
	})

	t.Run("memory hit", func(t *testing.T) {
		_, err := tc.Get(ctx, "live", "Stage")
		require.NoError(t, err)
		assert.Equal(t, 1, origin.count("live", "Stage"))

		stats := tc.Stats(ctx)
		assert.Equal(t, int64(1), stats.Memory.Hits)
		assert.Equal(t, int64(1), stats.Memory.Misses)
		assert.Equal(t, 1, stats.Memory.TotalEntries)
	})

	t.Run("persisted hit after invalidation", func(t *testing.T) {
		tc.Invalidate("live")
		_, err := tc.Get(ctx, "live", "Stage")
		require.NoError(t, err)
		assert.Equal(t, 1, origin.count("live", "Stage"))
		assert.Equal(t, int64(1), tc.Stats(ctx).Persisted.Hits)
	})

	t.Run("expired entry is refetched", func(t *testing.T) {
		c.Advance(2*time.Hour + time.Second)
		_, err := tc.Get(ctx, "live", "Stage")
		require.NoError(t, err)
		assert.Equal(t, 2, origin.count("live", "Stage"))

		tc.Wait()
		e, _ := store.entry("live", "Stage")
		assert.Equal(t, c.Now(), e.FetchedAt)
	})

	t.Run("sources are cached independently", func(t *testing.T) {
		_, err := tc.Get(ctx, "review", "Stage")
		require.NoError(t, err)
		assert.Equal(t, 1, origin.count("review", "Stage"))
	})
}

func TestTableCacheInvalidPersistedEntry(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	tc := newTestTableCache(store, origin, c)

	entry := NewCacheEntry("live", "Hero", []byte(`[{"no":9}]`), c.Now())
	entry.IsValid = false
	require.NoError(t, store.UpsertEntry(ctx, entry))

	data, err := tc.Get(ctx, "live", "Hero")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Equal(t, 1, origin.count("live", "Hero"))
	tc.Wait()
}

func TestTableCacheStoreFailures(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	store.failGet, store.failPut = true, true
	tc := newTestTableCache(store, origin, c)

	data, err := tc.Get(ctx, "live", "Item")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	tc.Wait()

	// the memory tier still serves it
	_, err = tc.Get(ctx, "live", "Item")
	require.NoError(t, err)
	assert.Equal(t, 1, origin.count("live", "Item"))
}

func TestTableCacheOriginFailure(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	origin.failWith("live", "Item", errFake)
	tc := newTestTableCache(store, origin, c)

	_, err := tc.Get(ctx, "live", "Item")
	assert.ErrorIs(t, err, errFake)
	tc.Wait()

	_, ok := store.entry("live", "Item")
	assert.False(t, ok)
	assert.Equal(t, 0, tc.Stats(ctx).Memory.TotalEntries)
}

func TestTableCacheConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	origin.delay = 50 * time.Millisecond
	tc := newTestTableCache(store, origin, c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tc.Get(ctx, "live", "Stage")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	tc.Wait()

	assert.Equal(t, 1, origin.count("live", "Stage"))
}

func TestTableCacheMemoryBound(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	tc := NewTableCache(store, origin, TableCacheOptions{Expiry: time.Hour, MaxEntries: 10, Now: c.Now})

	tables := []string{"Stage", "StageBattle", "Item", "ItemDropGroup", "Hero", "Formation", "CashShopItem", "KeyValues", "HeroGrade", "HeroLevelGrade", "StringSystem"}
	for _, table := range tables {
		_, err := tc.Get(ctx, "live", table)
		require.NoError(t, err)
	}
	tc.Wait()

	assert.Equal(t, 8, tc.Stats(ctx).Memory.TotalEntries)
}

func TestTableCacheClear(t *testing.T) {
	ctx := context.Background()
	store, origin, c := newMemStore(), newFakeOrigin(), newClock()
	tc := newTestTableCache(store, origin, c)

	for _, table := range []string{"Stage", "Item", "Hero"} {
		_, err := tc.Get(ctx, "live", table)
		require.NoError(t, err)
	}
	_, err := tc.Get(ctx, "live", "Stage")
	require.NoError(t, err)

	res, err := tc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.BeforeCount)
	assert.Equal(t, 3, res.DeletedCount)

	stats := tc.Stats(ctx)
	assert.Equal(t, 0, stats.Memory.TotalEntries)
	assert.Equal(t, int64(0), stats.Memory.Hits)
	assert.Equal(t, int64(0), stats.Memory.Misses)
	assert.Empty(t, stats.Persisted.StatsBySource)

	_, err = tc.Get(ctx, "live", "Stage")
	require.NoError(t, err)
	assert.Equal(t, 2, origin.count("live", "Stage"))
	tc.Wait()
}
