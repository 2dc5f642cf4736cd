package util

import (
	"math"

	"golang.org/x/exp/slices"

	"eversoul.dev/stageguide/internal/model/gamedata"
)

const (
	EntityHero    = 1
	EntityMonster = 2
	EntityRaid    = 3

	DefaultHeroGradeValue      = 0.85
	DefaultHeroLevelGradeValue = 1.0
)

var entityKeyPrefixes = map[int]string{
	EntityHero:    "BP_hero",
	EntityMonster: "BP_monster",
	EntityRaid:    "BP_raid",
}

// BaseBattlePower evaluates the base curve of the entity type at level.
// Unknown entity types yield 0.
func BaseBattlePower(b *gamedata.Bundle, entityType int, level int64) int64 {
	prefix, ok := entityKeyPrefixes[entityType]
	if !ok {
		return 0
	}

	var base, levelTerm, levelPerTerm float64
	for _, kv := range b.KeyValues {
		switch kv.KeyName {
		case prefix + "_base":
			base = kv.Float()
		case prefix + "_level":
			levelTerm = kv.Float()
		case prefix + "_level_per":
			levelPerTerm = kv.Float()
		}
	}

	l := float64(level)
	return int64(math.Floor(base + (levelTerm+levelPerTerm*l)*(l-1)))
}

// HeroGradeValue is the multiplier of the first HeroGrade row for grade.
func HeroGradeValue(b *gamedata.Bundle, grade int64) float64 {
	for _, g := range b.HeroGrades {
		if g.NameSno == grade {
			if g.HeroGradeValue.Valid {
				return g.HeroGradeValue.Float64
			}
			return DefaultHeroGradeValue
		}
	}
	return DefaultHeroGradeValue
}

// HeroLevelGradeValue walks the level steps in ascending order. Levels at or
// above the highest step clamp to that step's value.
func HeroLevelGradeValue(b *gamedata.Bundle, level int64) float64 {
	if len(b.HeroLevelGrades) == 0 {
		return DefaultHeroLevelGradeValue
	}

	steps := make([]*gamedata.HeroLevelGrade, len(b.HeroLevelGrades))
	copy(steps, b.HeroLevelGrades)
	slices.SortStableFunc(steps, func(x, y *gamedata.HeroLevelGrade) bool { return x.Level.Int64 < y.Level.Int64 })

	value := DefaultHeroLevelGradeValue
	for _, s := range steps {
		if s.Level.Int64 > level {
			break
		}
		value = stepValue(s)
	}

	// first row with the highest level wins ties
	top := b.HeroLevelGrades[0]
	for _, s := range b.HeroLevelGrades[1:] {
		if s.Level.Int64 > top.Level.Int64 {
			top = s
		}
	}
	if level >= top.Level.Int64 {
		value = stepValue(top)
	}

	return value
}

func stepValue(s *gamedata.HeroLevelGrade) float64 {
	if s.Value.Valid {
		return s.Value.Float64
	}
	return DefaultHeroLevelGradeValue
}

// PowerBonus holds the optional additive and proportional battle power terms.
type PowerBonus struct {
	EquipmentPower       float64
	EquipmentPowerPer    float64
	SignaturePowerPer    float64
	ContentsBuffPower    float64
	ContentsBuffPowerPer float64
}

// BattlePower combines the base curve with grade and level multipliers and
// the bonus terms. A non-finite total yields 0.
func BattlePower(b *gamedata.Bundle, entityType int, level, grade int64, bonus PowerBonus) int64 {
	base := float64(BaseBattlePower(b, entityType, level))
	gradeValue := HeroGradeValue(b, grade)
	levelGradeValue := HeroLevelGradeValue(b, level)

	total := base +
		(levelGradeValue-1)*base +
		(gradeValue-1)*base +
		bonus.EquipmentPower +
		bonus.EquipmentPowerPer*base +
		bonus.SignaturePowerPer*base +
		bonus.ContentsBuffPower +
		bonus.ContentsBuffPowerPer*base

	if math.IsInf(total, 0) || math.IsNaN(total) {
		return 0
	}
	return int64(math.Floor(total))
}
