package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/slices"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

const gameDataCacheRedisPrefix = "gamedata:"

// GameDataCacheRedis is the redis backed persisted tier of the table cache.
// Every data source is one hash keyed by table name holding msgpack encoded
// entries.
type GameDataCacheRedis struct {
	client *redis.Client
}

func NewGameDataCacheRedis(client *redis.Client) *GameDataCacheRedis {
	return &GameDataCacheRedis{client: client}
}

func (r *GameDataCacheRedis) key(source string) string {
	return gameDataCacheRedisPrefix + source
}

func (r *GameDataCacheRedis) GetEntry(ctx context.Context, source, table string) (*model.GameDataCache, error) {
	b, err := r.client.HGet(ctx, r.key(source), table).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, pgerr.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var entry model.GameDataCache
	if err := msgpack.Unmarshal(b, &entry); err != nil {
		return nil, errors.Wrap(err, "decode persisted entry")
	}
	return &entry, nil
}

func (r *GameDataCacheRedis) UpsertEntry(ctx context.Context, entry *model.GameDataCache) error {
	now := time.Now()
	if prev, err := r.GetEntry(ctx, entry.DataSource, entry.TableName); err == nil {
		entry.CreatedAt = prev.CreatedAt
	} else {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	b, err := msgpack.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode persisted entry")
	}
	return r.client.HSet(ctx, r.key(entry.DataSource), entry.TableName, b).Err()
}

func (r *GameDataCacheRedis) TouchEntry(ctx context.Context, source, table string, fetchedAt time.Time) error {
	entry, err := r.GetEntry(ctx, source, table)
	if err != nil {
		return err
	}
	entry.FetchedAt = fetchedAt
	entry.IsValid = true
	entry.UpdatedAt = time.Now()

	b, err := msgpack.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode persisted entry")
	}
	return r.client.HSet(ctx, r.key(source), table, b).Err()
}

func (r *GameDataCacheRedis) DeleteAll(ctx context.Context) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(constant.Sources))
	for _, s := range constant.Sources {
		keys = append(keys, r.key(s))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GameDataCacheRedis) Count(ctx context.Context) (int, error) {
	pipe := r.client.Pipeline()
	lens := make([]*redis.IntCmd, 0, len(constant.Sources))
	for _, s := range constant.Sources {
		lens = append(lens, pipe.HLen(ctx, r.key(s)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	total := 0
	for _, l := range lens {
		total += int(l.Val())
	}
	return total, nil
}

// Compact asks the allocator to release freed pages.
func (r *GameDataCacheRedis) Compact(ctx context.Context) error {
	return r.client.Do(ctx, "MEMORY", "PURGE").Err()
}

func (r *GameDataCacheRedis) CountBySource(ctx context.Context) ([]*model.SourceCacheStat, error) {
	stats := make([]*model.SourceCacheStat, 0, len(constant.Sources))
	for _, s := range constant.Sources {
		values, err := r.client.HVals(ctx, r.key(s)).Result()
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}

		stat := &model.SourceCacheStat{DataSource: s, Count: len(values)}
		for _, v := range values {
			var entry model.GameDataCache
			if err := msgpack.Unmarshal([]byte(v), &entry); err != nil {
				continue
			}
			if stat.LastUpdatedAt == nil || entry.UpdatedAt.After(*stat.LastUpdatedAt) {
				t := entry.UpdatedAt
				stat.LastUpdatedAt = &t
			}
		}
		stats = append(stats, stat)
	}

	slices.SortFunc(stats, func(x, y *model.SourceCacheStat) bool { return x.DataSource < y.DataSource })
	return stats, nil
}
