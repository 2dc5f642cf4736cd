package service

import (
	"context"

	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/app/appconfig"
	"eversoul.dev/stageguide/internal/repo"
)

func Module() fx.Option {
	return fx.Module("service",
		fx.Provide(
			NewOrigin,
			newTableStore,
			newTableCache,
			NewGameData,
			NewStage,
			NewRedSyncLocker,
			newRefresh,
			NewHealth,
		),
	)
}

type tableStoreDeps struct {
	fx.In

	Conf     *appconfig.Config
	Postgres *repo.GameDataCache
	Redis    *repo.GameDataCacheRedis
}

func newTableStore(deps tableStoreDeps) TableStore {
	if deps.Conf.CachePersistBackend == appconfig.PersistBackendRedis {
		return deps.Redis
	}
	return deps.Postgres
}

func newTableCache(lc fx.Lifecycle, conf *appconfig.Config, store TableStore, origin *Origin) *TableCache {
	c := NewTableCache(store, origin, TableCacheOptions{
		Expiry:     conf.CacheExpiry,
		MaxEntries: conf.CacheMemoryMaxEntries,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Wait()
			return nil
		},
	})
	return c
}

type refreshDeps struct {
	fx.In

	Conf   *appconfig.Config
	Tasks  *repo.CacheUpdateTask
	Store  TableStore
	Origin *Origin
	Cache  *TableCache
	Locker *RedSyncLocker
}

func newRefresh(lc fx.Lifecycle, deps refreshDeps) *Refresh {
	r := NewRefresh(deps.Tasks, deps.Store, deps.Origin, deps.Cache, deps.Locker, RefreshOptions{
		Attempts: deps.Conf.RefreshRetryAttempts,
		Delay:    deps.Conf.RefreshRetryDelay,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			r.Wait()
			return nil
		},
	})
	return r
}
