package service

import (
	"context"

	"github.com/ahmetb/go-linq/v3"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/model/gamedata"
	"eversoul.dev/stageguide/internal/pkg/async"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
	"eversoul.dev/stageguide/internal/util"
)

const mainStoryStageType = 1

var ErrStageNotFound = pgerr.ErrNotFound.Msg("stage not found with given area and stage number")

type Stage struct {
	GameData *GameData
}

func NewStage(gameData *GameData) *Stage {
	return &Stage{
		GameData: gameData,
	}
}

// GetStageList returns the main story stages of source ordered by area then stage.
func (s *Stage) GetStageList(ctx context.Context, source string) ([]*gamedata.Stage, error) {
	b, err := s.GameData.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return MainStoryStages(b.Stages), nil
}

func MainStoryStages(rows []*gamedata.Stage) []*gamedata.Stage {
	stages := make([]*gamedata.Stage, 0)
	linq.From(rows).
		WhereT(func(s *gamedata.Stage) bool {
			return s.AreaNo > 0 && s.StageNo > 0 && s.StageType == mainStoryStageType
		}).
		OrderByT(func(s *gamedata.Stage) int64 { return s.AreaNo }).
		ThenByT(func(s *gamedata.Stage) int64 { return s.StageNo }).
		ToSlice(&stages)
	return stages
}

// GetStageListsForAllSources loads the list of every source concurrently.
// A failing source is left out of the result; an error is returned only when
// every source failed.
func (s *Stage) GetStageListsForAllSources(ctx context.Context) (map[string][]*gamedata.Stage, error) {
	results := async.Settle(constant.Sources, func(source string) ([]*gamedata.Stage, error) {
		return s.GetStageList(ctx, source)
	})

	lists := make(map[string][]*gamedata.Stage, len(results))
	for i, r := range results {
		if r.Err == nil {
			lists[constant.Sources[i]] = r.Value
		}
	}
	if len(lists) == 0 {
		return nil, async.Errs(results)
	}
	return lists, nil
}

// GetStageDetails returns ErrStageNotFound when no stage sits at (areaNo, stageNo).
func (s *Stage) GetStageDetails(ctx context.Context, source string, areaNo, stageNo int64) (*model.StageDetails, error) {
	b, err := s.GameData.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	stage, ok := util.FindStage(b, areaNo, stageNo)
	if !ok {
		return nil, ErrStageNotFound
	}
	return util.AssembleStageDetails(b, stage), nil
}
