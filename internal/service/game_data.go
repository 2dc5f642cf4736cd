package service

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"eversoul.dev/stageguide/internal/model/gamedata"
	"eversoul.dev/stageguide/internal/pkg/flog"
)

type TableReader interface {
	Get(ctx context.Context, source, table string) (json.RawMessage, error)
}

type rowDecoder func(raw json.RawMessage) (skipped []int, err error)

func decodeInto[T any](dst *[]*T) rowDecoder {
	return func(raw json.RawMessage) ([]int, error) {
		rows, skipped, err := gamedata.DecodeRows[T](raw)
		if err != nil {
			return nil, err
		}
		*dst = rows
		return skipped, nil
	}
}

// GameData loads bundles through the table cache.
type GameData struct {
	Tables TableReader
}

func NewGameData(tables *TableCache) *GameData {
	return &GameData{
		Tables: tables,
	}
}

// Load fetches every table of source concurrently. The first table that
// cannot be fetched, or whose body is not an array, aborts the whole load.
// Single undecodable rows are skipped.
func (s *GameData) Load(ctx context.Context, source string) (*gamedata.Bundle, error) {
	b := &gamedata.Bundle{Source: source}
	decoders := map[string]rowDecoder{
		gamedata.TableStage:           decodeInto(&b.Stages),
		gamedata.TableStageBattle:     decodeInto(&b.StageBattles),
		gamedata.TableStringSystem:    decodeInto(&b.StringSystem),
		gamedata.TableStringItem:      decodeInto(&b.StringItem),
		gamedata.TableStringCharacter: decodeInto(&b.StringCharacter),
		gamedata.TableStringCashshop:  decodeInto(&b.StringCashshop),
		gamedata.TableStringUI:        decodeInto(&b.StringUI),
		gamedata.TableItem:            decodeInto(&b.Items),
		gamedata.TableItemDropGroup:   decodeInto(&b.ItemDropGroups),
		gamedata.TableHero:            decodeInto(&b.Heroes),
		gamedata.TableFormation:       decodeInto(&b.Formations),
		gamedata.TableCashShopItem:    decodeInto(&b.CashShopItems),
		gamedata.TableKeyValues:       decodeInto(&b.KeyValues),
		gamedata.TableHeroGrade:       decodeInto(&b.HeroGrades),
		gamedata.TableHeroLevelGrade:  decodeInto(&b.HeroLevelGrades),
	}

	eg, ectx := errgroup.WithContext(ctx)
	for _, table := range gamedata.Tables {
		table := table
		decode := decoders[table]
		eg.Go(func() error {
			raw, err := s.Tables.Get(ectx, source, table)
			if err != nil {
				return errors.Wrapf(err, "load table %s/%s", source, table)
			}
			skipped, err := decode(raw)
			if err != nil {
				return errors.Wrapf(ErrMalformedTable, "decode table %s/%s: %s", source, table, err)
			}
			if len(skipped) > 0 {
				flog.Warn(ctx).
					Str("evt.name", "gamedata.load.rows_skipped").
					Str("source", source).
					Str("table", table).
					Ints("rows", skipped).
					Msg("skipped undecodable rows")
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		flog.Warn(ctx).
			Err(err).
			Str("evt.name", "gamedata.load.failed").
			Str("source", source).
			Msg("failed to load game data bundle")
		return nil, err
	}

	return b, nil
}
