package repo

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("repo",
		fx.Provide(
			NewGameDataCache,
			NewGameDataCacheRedis,
			NewCacheUpdateTask,
		),
		fx.Invoke(registerMigrations),
	)
}

type migrator interface {
	Migrate(ctx context.Context) error
}

type migrationDeps struct {
	fx.In

	GameDataCache   *GameDataCache
	CacheUpdateTask *CacheUpdateTask
}

// registerMigrations creates the tables owned by this package before the
// servers start accepting requests.
func registerMigrations(lc fx.Lifecycle, deps migrationDeps) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, m := range []migrator{deps.GameDataCache, deps.CacheUpdateTask} {
				if err := m.Migrate(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
