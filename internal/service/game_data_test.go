package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eversoul.dev/stageguide/internal/model/gamedata"
)

func newTestGameData(origin *fakeOrigin) (*GameData, *TableCache) {
	tc := newTestTableCache(newMemStore(), origin, newClock())
	return NewGameData(tc), tc
}

func TestGameDataLoad(t *testing.T) {
	ctx := context.Background()
	origin := newFakeOrigin()
	origin.set("live", gamedata.TableStage, `[{"no":1,"area_no":1,"stage_no":1,"stage_type":1,"item_no_1":1001,"amount_1":2}]`)
	origin.set("live", gamedata.TableStringUI, `[{"no":7,"zh_tw":"介面"}]`)
	origin.set("live", gamedata.TableKeyValues, `[{"no":1,"key_name":"BP_hero_base","values_data":"12.5"}]`)
	gd, tc := newTestGameData(origin)

	b, err := gd.Load(ctx, "live")
	require.NoError(t, err)
	tc.Wait()

	assert.Equal(t, "live", b.Source)
	require.Len(t, b.Stages, 1)
	assert.Equal(t, int64(1001), b.Stages[0].FixedDrops[0].ItemNo.Int64)
	assert.Equal(t, int64(2), b.Stages[0].FixedDrops[0].Amount.Int64)
	assert.False(t, b.Stages[0].FixedDrops[1].ItemNo.Valid)
	require.Len(t, b.StringUI, 1)
	assert.Equal(t, "介面", b.StringUI[0].ZhTw)
	require.Len(t, b.KeyValues, 1)
	assert.Equal(t, 12.5, b.KeyValues[0].Float())
	assert.Empty(t, b.Heroes)

	for _, table := range gamedata.Tables {
		assert.Equal(t, 1, origin.count("live", table), table)
	}

	t.Run("second load is served from cache", func(t *testing.T) {
		_, err := gd.Load(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, len(gamedata.Tables), origin.total())
	})
}

func TestGameDataLoadFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("one failing table fails the load", func(t *testing.T) {
		origin := newFakeOrigin()
		origin.failWith("review", gamedata.TableHero, errFake)
		gd, tc := newTestGameData(origin)

		_, err := gd.Load(ctx, "review")
		assert.ErrorIs(t, err, errFake)
		tc.Wait()
	})

	t.Run("undecodable table", func(t *testing.T) {
		origin := newFakeOrigin()
		origin.set("review", gamedata.TableItem, `{"no":1}`)
		gd, tc := newTestGameData(origin)

		_, err := gd.Load(ctx, "review")
		assert.ErrorIs(t, err, ErrMalformedTable)
		tc.Wait()
	})
}
