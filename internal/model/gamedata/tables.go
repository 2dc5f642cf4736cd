package gamedata

// Table names as published on the origin, one JSON file per table.
const (
	TableStage           = "Stage"
	TableStageBattle     = "StageBattle"
	TableStringSystem    = "StringSystem"
	TableStringItem      = "StringItem"
	TableStringCharacter = "StringCharacter"
	TableStringCashshop  = "StringCashshop"
	TableStringUI        = "StringUI"
	TableItem            = "Item"
	TableItemDropGroup   = "ItemDropGroup"
	TableHero            = "Hero"
	TableFormation       = "Formation"
	TableCashShopItem    = "CashShopItem"
	TableKeyValues       = "KeyValues"
	TableHeroGrade       = "HeroGrade"
	TableHeroLevelGrade  = "HeroLevelGrade"
)

// Tables is the fixed set of tables making up a Bundle, in load order.
// The slice must not be modified.
var Tables = []string{
	TableStage,
	TableStageBattle,
	TableStringSystem,
	TableStringItem,
	TableStringCharacter,
	TableStringCashshop,
	TableStringUI,
	TableItem,
	TableItemDropGroup,
	TableHero,
	TableFormation,
	TableCashShopItem,
	TableKeyValues,
	TableHeroGrade,
	TableHeroLevelGrade,
}

// String table kinds accepted by Bundle.StringTable.
const (
	StringKindSystem    = "system"
	StringKindItem      = "item"
	StringKindCharacter = "character"
	StringKindCashshop  = "cashshop"
	StringKindUI        = "ui"
)

// IsTable reports whether name is one of Tables.
func IsTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
