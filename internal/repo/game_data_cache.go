package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
	"eversoul.dev/stageguide/internal/repo/selector"
)

// GameDataCache is the postgres backed persisted tier of the table cache.
type GameDataCache struct {
	db  *bun.DB
	sel selector.S[model.GameDataCache]
}

func NewGameDataCache(db *bun.DB) *GameDataCache {
	return &GameDataCache{db: db, sel: selector.New[model.GameDataCache](db)}
}

func (r *GameDataCache) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*model.GameDataCache)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "create table game_data_caches")
	}

	_, err = r.db.NewCreateIndex().
		Model((*model.GameDataCache)(nil)).
		Index("game_data_caches_source_table_key").
		Unique().
		IfNotExists().
		Column("data_source", "table_name").
		Exec(ctx)
	return errors.Wrap(err, "create index game_data_caches_source_table_key")
}

// GetEntry returns pgerr.ErrNotFound when no entry exists for the key.
func (r *GameDataCache) GetEntry(ctx context.Context, source, table string) (*model.GameDataCache, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("data_source = ?", source).Where("table_name = ?", table)
	})
}

// UpsertEntry writes the entry in one statement, so concurrent writers to the
// same key resolve to last write wins.
func (r *GameDataCache) UpsertEntry(ctx context.Context, entry *model.GameDataCache) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (data_source, table_name) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("checksum = EXCLUDED.checksum").
		Set("fetched_at = EXCLUDED.fetched_at").
		Set("is_valid = EXCLUDED.is_valid").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// TouchEntry renews fetched_at without rewriting the table body.
func (r *GameDataCache) TouchEntry(ctx context.Context, source, table string, fetchedAt time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*model.GameDataCache)(nil)).
		Set("fetched_at = ?", fetchedAt).
		Set("is_valid = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("data_source = ?", source).
		Where("table_name = ?", table).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return pgerr.ErrNotFound
	}
	return nil
}

func (r *GameDataCache) DeleteAll(ctx context.Context) (int, error) {
	res, err := r.db.NewDelete().
		Model((*model.GameDataCache)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *GameDataCache) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*model.GameDataCache)(nil)).
		Count(ctx)
}

// Compact reclaims the space left behind by deleted rows. VACUUM cannot run
// inside a transaction block, so it is issued on the bare connection pool.
func (r *GameDataCache) Compact(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "VACUUM game_data_caches")
	return err
}

func (r *GameDataCache) CountBySource(ctx context.Context) ([]*model.SourceCacheStat, error) {
	var stats []*model.SourceCacheStat
	err := r.db.NewSelect().
		Model((*model.GameDataCache)(nil)).
		Column("data_source").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("MAX(updated_at) AS last_updated_at").
		Group("data_source").
		Order("data_source").
		Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
