package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/pkg/cache"
	"eversoul.dev/stageguide/internal/pkg/flog"
	"eversoul.dev/stageguide/internal/pkg/observability"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

const persistWriteTimeout = 30 * time.Second

var ErrCacheEntryNotFound = pgerr.ErrNotFound.Msg("cache entry does not exist or is no longer valid")

// TableStore is the persisted tier. GetEntry returns pgerr.ErrNotFound for an
// absent key.
type TableStore interface {
	GetEntry(ctx context.Context, source, table string) (*model.GameDataCache, error)
	UpsertEntry(ctx context.Context, entry *model.GameDataCache) error
	// TouchEntry renews the fetch time of an existing entry and marks it
	// valid, returning pgerr.ErrNotFound for an absent key.
	TouchEntry(ctx context.Context, source, table string, fetchedAt time.Time) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Compact(ctx context.Context) error
	CountBySource(ctx context.Context) ([]*model.SourceCacheStat, error)
}

type TableFetcher interface {
	Fetch(ctx context.Context, source, table string) (json.RawMessage, error)
}

type TableCacheOptions struct {
	Expiry     time.Duration
	MaxEntries int
	// Now defaults to time.Now.
	Now func() time.Time
}

type memEntry struct {
	data      json.RawMessage
	fetchedAt time.Time
}

// TableCache serves raw tables from memory, then from the persisted store,
// then from the origin. Persisted store failures are logged and treated as a
// miss; they never fail a read.
type TableCache struct {
	store   TableStore
	fetcher TableFetcher
	expiry  time.Duration
	now     func() time.Time

	mem    *cache.Bounded[memEntry]
	flight singleflight.Group

	hits          atomic.Int64
	persistedHits atomic.Int64
	misses        atomic.Int64

	// writes tracks in-flight persisted writes.
	writes sync.WaitGroup
}

func NewTableCache(store TableStore, fetcher TableFetcher, opts TableCacheOptions) *TableCache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TableCache{
		store:   store,
		fetcher: fetcher,
		expiry:  opts.Expiry,
		now:     opts.Now,
		mem:     cache.NewBounded[memEntry](opts.MaxEntries),
	}
}

func CacheKey(source, table string) string {
	return source + "-" + table
}

// NewCacheEntry builds the persisted form of a table.
func NewCacheEntry(source, table string, data json.RawMessage, fetchedAt time.Time) *model.GameDataCache {
	return &model.GameDataCache{
		DataSource: source,
		TableName:  table,
		Data:       string(data),
		Checksum:   Checksum(data),
		FetchedAt:  fetchedAt,
		IsValid:    true,
	}
}

func Checksum(data []byte) string {
	return strconv.FormatUint(xxh3.Hash(data), 16)
}

func (c *TableCache) fresh(fetchedAt time.Time) bool {
	return c.now().Sub(fetchedAt) < c.expiry
}

func (c *TableCache) Get(ctx context.Context, source, table string) (json.RawMessage, error) {
	key := CacheKey(source, table)

	if e, ok := c.mem.Get(key); ok && c.fresh(e.fetchedAt) {
		c.hits.Add(1)
		observability.CacheLookups.WithLabelValues("memory", source).Inc()
		if l := flog.From(ctx).Trace(); l.Enabled() {
			l.Str("evt.name", "cache.memory.hit").Str("key", key).Msg("table served from memory")
		}
		return e.data, nil
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		if e, ok := c.getPersisted(ctx, source, table); ok {
			c.persistedHits.Add(1)
			observability.CacheLookups.WithLabelValues("persisted", source).Inc()
			c.remember(key, e)
			flog.Debug(ctx).Str("evt.name", "cache.persisted.hit").Str("key", key).Msg("table served from persisted store")
			return e.data, nil
		}

		c.misses.Add(1)
		observability.CacheLookups.WithLabelValues("origin", source).Inc()
		flog.Debug(ctx).Str("evt.name", "cache.miss").Str("key", key).Msg("table not cached, fetching from origin")

		data, err := c.fetcher.Fetch(ctx, source, table)
		if err != nil {
			return nil, err
		}

		e := memEntry{data: data, fetchedAt: c.now()}
		c.remember(key, e)
		c.persist(ctx, source, table, e)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *TableCache) remember(key string, e memEntry) {
	c.mem.Set(key, e)
	observability.CacheMemoryEntries.Set(float64(c.mem.Len()))
}

func (c *TableCache) getPersisted(ctx context.Context, source, table string) (memEntry, bool) {
	entry, err := c.store.GetEntry(ctx, source, table)
	if errors.Is(err, pgerr.ErrNotFound) {
		return memEntry{}, false
	} else if err != nil {
		observability.CachePersistFailures.WithLabelValues("read").Inc()
		flog.Warn(ctx).
			Err(err).
			Str("evt.name", "cache.persisted.read_failed").
			Str("key", CacheKey(source, table)).
			Msg("failed to read persisted table, treating as miss")
		return memEntry{}, false
	}

	if !entry.IsValid || !c.fresh(entry.FetchedAt) {
		return memEntry{}, false
	}
	return memEntry{data: json.RawMessage(entry.Data), fetchedAt: entry.FetchedAt}, true
}

// persist writes the entry in the background. The read path never waits on it.
func (c *TableCache) persist(ctx context.Context, source, table string, e memEntry) {
	wctx, cancel := context.WithTimeout(flog.Detach(ctx), persistWriteTimeout)

	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		defer cancel()

		if err := c.store.UpsertEntry(wctx, NewCacheEntry(source, table, e.data, e.fetchedAt)); err != nil {
			observability.CachePersistFailures.WithLabelValues("write").Inc()
			flog.Warn(wctx).
				Err(err).
				Str("evt.name", "cache.persisted.write_failed").
				Str("key", CacheKey(source, table)).
				Msg("failed to persist fetched table")
		}
	}()
}

// Wait blocks until every background persisted write has finished.
func (c *TableCache) Wait() {
	c.writes.Wait()
}

func (c *TableCache) Stats(ctx context.Context) *model.CacheStats {
	stats := &model.CacheStats{
		Memory: model.MemoryCacheStats{
			TotalEntries: c.mem.Len(),
			Hits:         c.hits.Load(),
			Misses:       c.misses.Load(),
		},
		Persisted: model.PersistedCacheStats{
			Hits:          c.persistedHits.Load(),
			StatsBySource: []*model.SourceCacheStat{},
		},
	}

	bySource, err := c.store.CountBySource(ctx)
	if err != nil {
		flog.Warn(ctx).Err(err).Str("evt.name", "cache.stats.failed").Msg("failed to count persisted tables")
		return stats
	}
	stats.Persisted.StatsBySource = bySource
	return stats
}

// Clear resets the memory tier and every counter, deletes all persisted
// entries and compacts the persisted store.
func (c *TableCache) Clear(ctx context.Context) (*model.CacheClearResult, error) {
	// a pending write landing after the delete would resurrect its entry
	c.Wait()

	c.mem.Flush()
	observability.CacheMemoryEntries.Set(0)
	c.hits.Store(0)
	c.persistedHits.Store(0)
	c.misses.Store(0)

	before, err := c.store.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count persisted tables")
	}
	deleted, err := c.store.DeleteAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "delete persisted tables")
	}
	if err := c.store.Compact(ctx); err != nil {
		return nil, errors.Wrap(err, "compact persisted store")
	}

	flog.Info(ctx).
		Str("evt.name", "cache.cleared").
		Int("before", before).
		Int("deleted", deleted).
		Msg("table cache cleared")

	return &model.CacheClearResult{DeletedCount: deleted, BeforeCount: before}, nil
}

// Invalidate drops the memory tier entries of one source.
func (c *TableCache) Invalidate(source string) {
	prefix := CacheKey(source, "")
	c.mem.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
	observability.CacheMemoryEntries.Set(float64(c.mem.Len()))
}

// Entry returns the persisted entry of one table, ErrCacheEntryNotFound when
// it is absent or marked invalid.
func (c *TableCache) Entry(ctx context.Context, source, table string) (*model.GameDataCache, error) {
	entry, err := c.store.GetEntry(ctx, source, table)
	if errors.Is(err, pgerr.ErrNotFound) {
		return nil, ErrCacheEntryNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "read persisted table")
	}
	if !entry.IsValid {
		return nil, ErrCacheEntryNotFound
	}
	return entry, nil
}
