package util

import "eversoul.dev/stageguide/internal/model/gamedata"

var formationLabels = map[int64]string{
	1: "基本阵型",
	2: "狙击型",
	3: "防守阵型",
	4: "突击型",
}

// EmptyString is the record returned by every resolver when a lookup misses.
func EmptyString(no int64) gamedata.StringData {
	return gamedata.StringData{No: no}
}

// StringByType resolves no in the string table of the given kind.
func StringByType(b *gamedata.Bundle, kind string, no int64) gamedata.StringData {
	if _, ok := b.StringTable(kind); !ok {
		return EmptyString(no)
	}
	s, ok := b.FindString(kind, no)
	if !ok {
		return EmptyString(no)
	}
	return *s
}

// ItemDisplayName resolves an item through its name pointer into the item
// string table.
func ItemDisplayName(b *gamedata.Bundle, itemNo int64) gamedata.StringData {
	item, ok := b.FindItem(itemNo)
	if !ok || !item.NameSno.Valid {
		return EmptyString(itemNo)
	}
	s, ok := b.FindString(gamedata.StringKindItem, item.NameSno.Int64)
	if !ok {
		return EmptyString(itemNo)
	}
	return *s
}

// CharacterDisplayName resolves heroNo in the character string table. With
// indirection the hero row's name pointer is followed first, falling back to
// heroNo when the hero has none.
func CharacterDisplayName(b *gamedata.Bundle, heroNo int64, indirection bool) gamedata.StringData {
	nameSno := heroNo
	if indirection {
		if hero, ok := b.FindHero(heroNo); ok && hero.NameSno.Valid {
			nameSno = hero.NameSno.Int64
		}
	}
	s, ok := b.FindString(gamedata.StringKindCharacter, nameSno)
	if !ok {
		return EmptyString(heroNo)
	}
	return *s
}

// FormationLabel returns the label of a formation type, or "" when unknown.
func FormationLabel(formationType int64) string {
	return formationLabels[formationType]
}
