package server

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/pkg/fiberstore"
	"eversoul.dev/stageguide/internal/server/httpserver"
	"eversoul.dev/stageguide/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(httpserver.Create),
		fx.Provide(svr.CreateEndpointGroups),
		fx.Provide(newResponseStore))
}

func newResponseStore(client *redis.Client) *fiberstore.Redis {
	return fiberstore.NewRedis(client, "fibercache:")
}
