package meta

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/pkg/cachectrl"
	"eversoul.dev/stageguide/internal/pkg/fiberstore"
	"eversoul.dev/stageguide/internal/pkg/middlewares"
	"eversoul.dev/stageguide/internal/server/svr"
	"eversoul.dev/stageguide/internal/service"
)

type Admin struct {
	fx.In

	TableCache     *service.TableCache
	RefreshService *service.Refresh
	ResponseStore  *fiberstore.Redis
}

type RefreshRequest struct {
	DataSource string `json:"dataSource" validate:"required,refreshtarget"`
	// IsManual defaults to true. Schedulers calling in set it to false so
	// concurrent automatic runs are refused.
	IsManual *bool `json:"isManual"`
}

func (r *RefreshRequest) TaskType() string {
	if r.IsManual != nil && !*r.IsManual {
		return constant.TaskTypeAuto
	}
	return constant.TaskTypeManual
}

func RegisterAdmin(admin *svr.Admin, c Admin) {
	admin.Use(func(ctx *fiber.Ctx) error {
		cachectrl.OptOut(ctx)
		return ctx.Next()
	})

	admin.Get("/cache/stats", c.GetStats)
	admin.Post("/cache/clear", c.Clear)
	admin.Get("/cache/refresh", c.GetRefreshStatus)
	admin.Post("/cache/refresh", middlewares.InjectValidBody[RefreshRequest](), c.Refresh)
	admin.Get("/cache/entries/:source/:table", middlewares.ValidateSourceAsParam, middlewares.ValidateTableAsParam, c.GetEntry)
}

func (c *Admin) GetStats(ctx *fiber.Ctx) error {
	return ctx.JSON(c.TableCache.Stats(ctx.UserContext()))
}

func (c *Admin) Clear(ctx *fiber.Ctx) error {
	res, err := c.TableCache.Clear(ctx.UserContext())
	if err != nil {
		return err
	}

	if err := c.ResponseStore.Reset(); err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "http.response_cache.reset_failed").
			Msg("failed to reset the shared response cache")
	}

	return ctx.JSON(res)
}

func (c *Admin) GetRefreshStatus(ctx *fiber.Ctx) error {
	status, err := c.RefreshService.Status(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(status)
}

// Refresh starts a refresh and answers 202 with the task; progress is polled
// through GetRefreshStatus.
func (c *Admin) Refresh(ctx *fiber.Ctx) error {
	req := middlewares.Body[RefreshRequest](ctx)

	task, err := c.RefreshService.RunAsync(ctx.UserContext(), req.DataSource, req.TaskType())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(task)
}

type EntryResponse struct {
	DataSource string          `json:"dataSource"`
	TableName  string          `json:"tableName"`
	Checksum   string          `json:"checksum"`
	FetchedAt  string          `json:"fetchedAt"`
	IsValid    bool            `json:"isValid"`
	Data       json.RawMessage `json:"data"`
}

func (c *Admin) GetEntry(ctx *fiber.Ctx) error {
	entry, err := c.TableCache.Entry(ctx.UserContext(), ctx.Params("source"), ctx.Params("table"))
	if err != nil {
		return err
	}

	return ctx.JSON(EntryResponse{
		DataSource: entry.DataSource,
		TableName:  entry.TableName,
		Checksum:   entry.Checksum,
		FetchedAt:  entry.FetchedAt.UTC().Format(constant.TimeLayout),
		IsValid:    entry.IsValid,
		Data:       json.RawMessage(entry.Data),
	})
}
