package util

import (
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/model/gamedata"
)

const (
	unknownLevelType = "未知类型"
	unknownHeroName  = "未知英雄"
	unknownHeroGrade = "未知品质"
)

// FindStage returns the first stage row at (areaNo, stageNo).
func FindStage(b *gamedata.Bundle, areaNo, stageNo int64) (*gamedata.Stage, bool) {
	return lo.Find(b.Stages, func(s *gamedata.Stage) bool {
		return s.AreaNo == areaNo && s.StageNo == stageNo
	})
}

// AssembleStageDetails derives the full stage view. Lookup misses degrade to
// empty values.
func AssembleStageDetails(b *gamedata.Bundle, stage *gamedata.Stage) *model.StageDetails {
	return &model.StageDetails{
		AreaNo:      stage.AreaNo,
		StageNo:     stage.StageNo,
		LevelType:   LevelTypeLabel(b, stage),
		Exp:         stage.Exp,
		FixedItems:  FixedItems(b, stage),
		BattleTeams: BattleTeams(b, stage.No),
		DropItems:   DropItems(b, stage.ItemDropGroupNo.Int64),
		CashPacks:   FormatCashPacks(b, CashPackStage, stage),
	}
}

// LevelTypeLabel resolves the stage's level type in the system string table.
func LevelTypeLabel(b *gamedata.Bundle, stage *gamedata.Stage) string {
	if !stage.LevelType.Valid {
		return ""
	}
	s, ok := b.FindString(gamedata.StringKindSystem, stage.LevelType.Int64)
	if !ok {
		return ""
	}
	if s.ZhTw == "" {
		return unknownLevelType
	}
	return s.ZhTw
}

func FixedItems(b *gamedata.Bundle, stage *gamedata.Stage) []*model.FixedItem {
	items := make([]*model.FixedItem, 0, gamedata.FixedDropSlots)
	for _, slot := range stage.FixedDrops {
		if !slot.ItemNo.Valid {
			continue
		}
		items = append(items, &model.FixedItem{
			Name:   ItemDisplayName(b, slot.ItemNo.Int64).ZhTw,
			Amount: slot.Amount.Int64,
		})
	}
	return items
}

// BattleTeams resolves the enemy teams of the stage with global number stageNo,
// ordered by team number.
func BattleTeams(b *gamedata.Bundle, stageNo int64) []*model.BattleTeam {
	battles := lo.Filter(b.StageBattles, func(sb *gamedata.StageBattle, _ int) bool {
		return sb.No == stageNo
	})
	slices.SortStableFunc(battles, func(x, y *gamedata.StageBattle) bool { return x.TeamNo < y.TeamNo })

	teams := make([]*model.BattleTeam, 0, len(battles))
	for _, battle := range battles {
		teams = append(teams, battleTeam(b, battle))
	}
	return teams
}

func battleTeam(b *gamedata.Bundle, battle *gamedata.StageBattle) *model.BattleTeam {
	team := &model.BattleTeam{
		TeamNo:        battle.TeamNo,
		FormationType: FormationLabel(battle.FormationType),
		Heroes:        make([]*model.TeamHero, 0, gamedata.TeamSlots),
	}

	var first *gamedata.HeroSlot
	for i := range battle.Heroes {
		slot := &battle.Heroes[i]
		if !slot.HeroNo.Valid {
			continue
		}
		if first == nil {
			first = slot
		}

		name := CharacterDisplayName(b, slot.HeroNo.Int64, true).ZhTw
		if name == "" {
			name = unknownHeroName
		}
		var grade string
		if slot.Grade.Valid {
			grade = StringByType(b, gamedata.StringKindSystem, slot.Grade.Int64).ZhTw
		}
		if grade == "" {
			grade = unknownHeroGrade
		}

		team.Heroes = append(team.Heroes, &model.TeamHero{
			Position: i + 1,
			Name:     name,
			Grade:    grade,
			Level:    slot.Level.Int64,
		})
	}

	// every occupied position is assumed to match the first one
	if first != nil && first.Grade.Valid && first.Level.Valid {
		power := BattlePower(b, EntityMonster, first.Level.Int64, first.Grade.Int64, PowerBonus{}) * int64(len(team.Heroes))
		team.BattlePower = &power
	}

	return team
}

// DropItems resolves the members of a drop group, keeps the highest rate per
// display name and orders the result by rate, highest first. A zero group
// yields no items.
func DropItems(b *gamedata.Bundle, groupNo int64) []*model.DropItem {
	if groupNo == 0 {
		return []*model.DropItem{}
	}

	members := lo.Filter(b.ItemDropGroups, func(g *gamedata.ItemDropGroup, _ int) bool {
		return g.No == groupNo && g.ItemNo != 0
	})

	items := make([]*model.DropItem, 0, len(members))
	byName := make(map[string]int, len(members))
	for _, m := range members {
		item := &model.DropItem{
			ItemName: ItemDisplayName(b, m.ItemNo),
			Amount:   m.Amount,
			Rate:     float64(m.DropRate) * 0.001,
		}
		name := item.ItemName.ZhTw
		if i, ok := byName[name]; ok {
			if item.Rate > items[i].Rate {
				items[i] = item
			}
			continue
		}
		byName[name] = len(items)
		items = append(items, item)
	}

	slices.SortStableFunc(items, func(x, y *model.DropItem) bool { return x.Rate > y.Rate })
	return items
}
