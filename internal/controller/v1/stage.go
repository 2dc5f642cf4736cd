package v1

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jinzhu/copier"
	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/model/gamedata"
	"eversoul.dev/stageguide/internal/pkg/cachectrl"
	"eversoul.dev/stageguide/internal/pkg/fiberstore"
	"eversoul.dev/stageguide/internal/pkg/middlewares"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
	"eversoul.dev/stageguide/internal/server/svr"
	"eversoul.dev/stageguide/internal/service"
)

const (
	// stageCacheAge bounds how long clients may keep a response; tables refresh every 2h.
	stageCacheAge = 10 * time.Minute

	// responseCacheAge is how long a rendered response is shared across instances.
	responseCacheAge = time.Minute
)

type Stage struct {
	fx.In

	StageService  *service.Stage
	ResponseStore *fiberstore.Redis
}

func RegisterStage(v1 *svr.V1, c Stage) {
	shared := cache.New(cache.Config{
		CacheHeader:  "X-StageGuide-Cache",
		Expiration:   responseCacheAge,
		Storage:      c.ResponseStore,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return utils.CopyString(ctx.OriginalURL())
		},
	})

	v1.Get("/stages", middlewares.ValidateSourceAsQuery, shared, c.GetStages)
	v1.Get("/stages/preload", shared, c.PreloadStages)
	v1.Get("/stages/:areaNo/:stageNo", middlewares.ValidateSourceAsQuery, shared, c.GetStageDetails)
}

func toListItems(stages []*gamedata.Stage) ([]*model.StageListItem, error) {
	items := make([]*model.StageListItem, 0, len(stages))
	for _, s := range stages {
		item := &model.StageListItem{}
		if err := copier.Copy(item, s); err != nil {
			return nil, err
		}
		item.LevelType = s.LevelType.Int64
		items = append(items, item)
	}
	return items, nil
}

// @Summary  Get main story stages of a data source
// @Tags     Stage
// @Produce  json
// @Param    source  query     string  false  "live or review"  default(live)
// @Success  200     {array}   model.StageListItem
// @Failure  502     {object}  pgerr.PenguinError  "The game data origin could not serve a table"
// @Router   /api/v1/stages [GET]
func (c *Stage) GetStages(ctx *fiber.Ctx) error {
	source := ctx.Query("source", constant.SourceLive)

	stages, err := c.StageService.GetStageList(ctx.UserContext(), source)
	if err != nil {
		return err
	}
	items, err := toListItems(stages)
	if err != nil {
		return err
	}

	cachectrl.OptInCustom(ctx, time.Now(), stageCacheAge)
	return ctx.JSON(items)
}

// PreloadStages answers with the list of every source. A source that failed to
// load is null.
func (c *Stage) PreloadStages(ctx *fiber.Ctx) error {
	lists, err := c.StageService.GetStageListsForAllSources(ctx.UserContext())
	if err != nil {
		return pgerr.ErrUpstreamUnavailable.Msg("upstream unavailable: no data source could be loaded: %s", err)
	}

	body := make(map[string][]*model.StageListItem, len(constant.Sources))
	for _, source := range constant.Sources {
		stages, ok := lists[source]
		if !ok {
			body[source] = nil
			continue
		}
		items, err := toListItems(stages)
		if err != nil {
			return err
		}
		body[source] = items
	}

	cachectrl.OptInCustom(ctx, time.Now(), stageCacheAge)
	return ctx.JSON(body)
}

func parseStageParam(ctx *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, pgerr.ErrInvalidReq.Msg("invalid request: %s must be a positive integer", name)
	}
	return v, nil
}

// @Summary  Get the details of a stage
// @Tags     Stage
// @Produce  json
// @Param    areaNo   path      int     true   "Area number"
// @Param    stageNo  path      int     true   "Stage number within the area"
// @Param    source   query     string  false  "live or review"  default(live)
// @Success  200      {object}  model.StageDetails
// @Failure  404      {object}  pgerr.PenguinError  "No stage at the given area and stage number"
// @Failure  502      {object}  pgerr.PenguinError  "The game data origin could not serve a table"
// @Router   /api/v1/stages/{areaNo}/{stageNo} [GET]
func (c *Stage) GetStageDetails(ctx *fiber.Ctx) error {
	areaNo, err := parseStageParam(ctx, "areaNo")
	if err != nil {
		return err
	}
	stageNo, err := parseStageParam(ctx, "stageNo")
	if err != nil {
		return err
	}
	source := ctx.Query("source", constant.SourceLive)

	details, err := c.StageService.GetStageDetails(ctx.UserContext(), source, areaNo, stageNo)
	if err != nil {
		return err
	}

	cachectrl.OptInCustom(ctx, time.Now(), stageCacheAge)
	return ctx.JSON(details)
}
