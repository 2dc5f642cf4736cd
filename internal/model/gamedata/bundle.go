package gamedata

import "sync"

// Bundle is the read-only snapshot of every table of one data source.
type Bundle struct {
	Source string

	Stages          []*Stage
	StageBattles    []*StageBattle
	StringSystem    []*StringData
	StringItem      []*StringData
	StringCharacter []*StringData
	StringCashshop  []*StringData
	StringUI        []*StringData
	Items           []*Item
	ItemDropGroups  []*ItemDropGroup
	Heroes          []*Hero
	Formations      []*Formation
	CashShopItems   []*CashShopItem
	KeyValues       []*KeyValue
	HeroGrades      []*HeroGrade
	HeroLevelGrades []*HeroLevelGrade

	indexOnce sync.Once
	strings   map[string]map[int64]*StringData
	items     map[int64]*Item
	heroes    map[int64]*Hero
}

// StringTable returns the string table of the given kind and whether the
// kind exists.
func (b *Bundle) StringTable(kind string) ([]*StringData, bool) {
	switch kind {
	case StringKindSystem:
		return b.StringSystem, true
	case StringKindItem:
		return b.StringItem, true
	case StringKindCharacter:
		return b.StringCharacter, true
	case StringKindCashshop:
		return b.StringCashshop, true
	case StringKindUI:
		return b.StringUI, true
	default:
		return nil, false
	}
}

// FindString returns the first row of the kind's string table numbered no.
func (b *Bundle) FindString(kind string, no int64) (*StringData, bool) {
	b.buildIndex()
	s, ok := b.strings[kind][no]
	return s, ok
}

// FindItem returns the first Item row numbered no.
func (b *Bundle) FindItem(no int64) (*Item, bool) {
	b.buildIndex()
	i, ok := b.items[no]
	return i, ok
}

// FindHero returns the first Hero row numbered no.
func (b *Bundle) FindHero(no int64) (*Hero, bool) {
	b.buildIndex()
	h, ok := b.heroes[no]
	return h, ok
}

func (b *Bundle) buildIndex() {
	b.indexOnce.Do(func() {
		b.strings = make(map[string]map[int64]*StringData, 5)
		for _, kind := range []string{StringKindSystem, StringKindItem, StringKindCharacter, StringKindCashshop, StringKindUI} {
			rows, _ := b.StringTable(kind)
			idx := make(map[int64]*StringData, len(rows))
			for _, r := range rows {
				if _, ok := idx[r.No]; !ok {
					idx[r.No] = r
				}
			}
			b.strings[kind] = idx
		}

		b.items = make(map[int64]*Item, len(b.Items))
		for _, i := range b.Items {
			if _, ok := b.items[i.No]; !ok {
				b.items[i.No] = i
			}
		}

		b.heroes = make(map[int64]*Hero, len(b.Heroes))
		for _, h := range b.Heroes {
			if _, ok := b.heroes[h.No]; !ok {
				b.heroes[h.No] = h
			}
		}
	})
}
