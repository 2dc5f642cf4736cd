package model

import "eversoul.dev/stageguide/internal/model/gamedata"

type StageDetails struct {
	AreaNo      int64         `json:"area_no"`
	StageNo     int64         `json:"stage_no"`
	LevelType   string        `json:"level_type"`
	Exp         int64         `json:"exp"`
	FixedItems  []*FixedItem  `json:"fixed_items"`
	BattleTeams []*BattleTeam `json:"battle_teams"`
	DropItems   []*DropItem   `json:"drop_items"`
	CashPacks   []string      `json:"cash_packs"`
}

type FixedItem struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

type BattleTeam struct {
	TeamNo        int64       `json:"team_no"`
	FormationType string      `json:"formation_type"`
	Heroes        []*TeamHero `json:"heroes"`
	// BattlePower is absent when the first occupied position lacks a grade or level.
	BattlePower *int64 `json:"battle_power,omitempty"`
}

type TeamHero struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Grade    string `json:"grade"`
	Level    int64  `json:"level"`
}

type DropItem struct {
	ItemName gamedata.StringData `json:"item_name"`
	Amount   int64               `json:"amount"`
	// Rate is a percentage.
	Rate float64 `json:"rate"`
}

// StageListItem is the projection of a stage row served by the list endpoints.
type StageListItem struct {
	No        int64 `json:"no"`
	AreaNo    int64 `json:"area_no"`
	StageNo   int64 `json:"stage_no"`
	StageType int64 `json:"stage_type"`
	LevelType int64 `json:"level_type,omitempty"`
	Exp       int64 `json:"exp"`
}
