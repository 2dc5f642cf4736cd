package util

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"eversoul.dev/stageguide/internal/model/gamedata"
)

// fixtureTables decodes into a bundle the same way the loader does, so the
// numbered slot columns go through the row decoders.
var fixtureTables = map[string]string{
	gamedata.TableStage: `[
		{"no":101,"area_no":1,"stage_no":1,"stage_type":1,"level_type":900,"exp":120,"item_drop_group_no":7,
		 "item_no_1":1001,"amount_1":5,"item_no_2":0,"amount_2":0,"item_no_3":1002,"amount_3":10},
		{"no":102,"area_no":1,"stage_no":2,"stage_type":1,"level_type":901,"exp":130,"item_drop_group_no":0},
		{"no":103,"area_no":1,"stage_no":3,"stage_type":1,"level_type":null,"exp":140,"item_drop_group_no":null}
	]`,
	gamedata.TableStageBattle: `[
		{"no":101,"team_no":2,"formation_type":3,"hero_no_1":2001,"hero_grade_1":3,"level_1":10,"hero_no_3":2002,"hero_grade_3":3,"level_3":10},
		{"no":101,"team_no":1,"formation_type":9,"hero_no_2":2003,"level_2":5},
		{"no":102,"team_no":1,"formation_type":1,"hero_no_1":2001,"hero_grade_1":3,"level_1":20}
	]`,
	gamedata.TableStringSystem: `[
		{"no":3,"zh_tw":"傳說"},
		{"no":900,"zh_tw":"普通"},
		{"no":901,"zh_tw":""}
	]`,
	gamedata.TableStringItem: `[
		{"no":5001,"zh_tw":"金幣","en":"Gold"},
		{"no":5002,"zh_tw":"鑽石","en":"Diamond"},
		{"no":5001,"zh_tw":"重複","en":"Duplicate"}
	]`,
	gamedata.TableStringCharacter: `[
		{"no":7001,"zh_tw":"哥布林"},
		{"no":2003,"zh_tw":"直接名稱"}
	]`,
	gamedata.TableStringCashshop: `[
		{"no":501,"zh_tw":"新手禮包"}
	]`,
	gamedata.TableStringUI: `[
		{"no":601,"zh_tw":"限購{0}次（{0}）"}
	]`,
	gamedata.TableItem: `[
		{"no":1001,"grade":1,"name_sno":5001},
		{"no":1002,"grade":2,"name_sno":5002},
		{"no":1003,"grade":1,"name_sno":5001},
		{"no":1004,"grade":1,"name_sno":null}
	]`,
	gamedata.TableItemDropGroup: `[
		{"no":7,"item_no":1001,"amount":1,"drop_rate":5000},
		{"no":7,"item_no":1002,"amount":2,"drop_rate":20000},
		{"no":7,"item_no":0,"amount":9,"drop_rate":90000},
		{"no":7,"item_no":1003,"amount":3,"drop_rate":8000},
		{"no":8,"item_no":1002,"amount":1,"drop_rate":1000}
	]`,
	gamedata.TableHero: `[
		{"no":2001,"grade":3,"name_sno":7001},
		{"no":2002,"grade":3,"name_sno":null}
	]`,
	gamedata.TableFormation: `[{"no":1,"type":1}]`,
	gamedata.TableCashShopItem: `[
		{"no":1,"type":"stage","type_value":"101","name_sno":501,"item_info_sno":0,"desc_sno":601,"limit_buy":3,"limit_hour":72,
		 "item_infos":"[[1001,5],[1002,10]]","price_krw":5500,"price_other":600},
		{"no":2,"type":"stage","type_value":"102","name_sno":501},
		{"no":3,"type":"barrier","type_value":"101","name_sno":501}
	]`,
	gamedata.TableKeyValues: `[
		{"no":1,"key_name":"BP_monster_base","values_data":"100"},
		{"no":2,"key_name":"BP_monster_level","values_data":10},
		{"no":3,"key_name":"BP_monster_level_per","values_data":"1"},
		{"no":4,"key_name":"BP_hero_base","values_data":"not a number"}
	]`,
	gamedata.TableHeroGrade: `[
		{"no":1,"name_sno":3,"hero_grade_value":1.25},
		{"no":2,"name_sno":4,"hero_grade_value":null}
	]`,
	gamedata.TableHeroLevelGrade: `[
		{"no":1,"level":1,"value":1},
		{"no":3,"level":20,"value":2},
		{"no":2,"level":10,"value":1.5}
	]`,
}

func fixtureBundle(t *testing.T) *gamedata.Bundle {
	t.Helper()

	b := &gamedata.Bundle{Source: "live"}
	targets := map[string]any{
		gamedata.TableStage:           &b.Stages,
		gamedata.TableStageBattle:     &b.StageBattles,
		gamedata.TableStringSystem:    &b.StringSystem,
		gamedata.TableStringItem:      &b.StringItem,
		gamedata.TableStringCharacter: &b.StringCharacter,
		gamedata.TableStringCashshop:  &b.StringCashshop,
		gamedata.TableStringUI:        &b.StringUI,
		gamedata.TableItem:            &b.Items,
		gamedata.TableItemDropGroup:   &b.ItemDropGroups,
		gamedata.TableHero:            &b.Heroes,
		gamedata.TableFormation:       &b.Formations,
		gamedata.TableCashShopItem:    &b.CashShopItems,
		gamedata.TableKeyValues:       &b.KeyValues,
		gamedata.TableHeroGrade:       &b.HeroGrades,
		gamedata.TableHeroLevelGrade:  &b.HeroLevelGrades,
	}
	for table, raw := range fixtureTables {
		require.NoError(t, json.Unmarshal([]byte(raw), targets[table]), table)
	}
	return b
}

func fixtureStage(t *testing.T, b *gamedata.Bundle, areaNo, stageNo int64) *gamedata.Stage {
	t.Helper()

	s, ok := FindStage(b, areaNo, stageNo)
	require.True(t, ok)
	return s
}
