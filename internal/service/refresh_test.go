package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/model/gamedata"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

type refreshFixture struct {
	store  *memStore
	origin *fakeOrigin
	tasks  *memTasks
	locker *memLocker
	clock  *clock
	cache  *TableCache
	svc    *Refresh
}

func newRefreshFixture() *refreshFixture {
	f := &refreshFixture{
		store:  newMemStore(),
		origin: newFakeOrigin(),
		tasks:  &memTasks{},
		locker: &memLocker{},
	}
	c := newClock()
	f.clock = c
	f.cache = newTestTableCache(f.store, f.origin, c)
	f.svc = NewRefresh(f.tasks, f.store, f.origin, f.cache, f.locker, RefreshOptions{
		Attempts: 2,
		Delay:    time.Millisecond,
		Now:      c.Now,
	})
	return f
}

func TestRefreshRun(t *testing.T) {
	ctx := context.Background()

	t.Run("single source", func(t *testing.T) {
		f := newRefreshFixture()
		task, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
		require.NoError(t, err)

		assert.Equal(t, constant.TaskStatusCompleted, task.Status)
		assert.Equal(t, len(gamedata.Tables), task.UpdatedFiles)
		assert.NotNil(t, task.CompletedAt)
		assert.Nil(t, task.ErrorMessage)

		stored := f.tasks.get(task.ID)
		require.NotNil(t, stored)
		assert.Equal(t, constant.TaskStatusCompleted, stored.Status)

		count, _ := f.store.Count(ctx)
		assert.Equal(t, len(gamedata.Tables), count)
	})

	t.Run("all sources", func(t *testing.T) {
		f := newRefreshFixture()
		task, err := f.svc.Run(ctx, constant.SourceAll, constant.TaskTypeManual)
		require.NoError(t, err)
		assert.Equal(t, 2*len(gamedata.Tables), task.UpdatedFiles)
		assert.Equal(t, constant.SourceAll, task.DataSource)

		// progress is recorded after every table
		require.Len(t, f.tasks.progress, 2*len(gamedata.Tables)+1)
		for i := 0; i < 2*len(gamedata.Tables); i++ {
			assert.Equal(t, i+1, f.tasks.progress[i])
		}
	})

	t.Run("failed tables are skipped", func(t *testing.T) {
		f := newRefreshFixture()
		f.origin.failWith(constant.SourceLive, gamedata.TableHero, errFake)
		task, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
		require.NoError(t, err)

		assert.Equal(t, constant.TaskStatusCompleted, task.Status)
		assert.Equal(t, len(gamedata.Tables)-1, task.UpdatedFiles)
		// retried once
		assert.Equal(t, 2, f.origin.count(constant.SourceLive, gamedata.TableHero))
		_, ok := f.store.entry(constant.SourceLive, gamedata.TableHero)
		assert.False(t, ok)
	})

	t.Run("memory tier is invalidated", func(t *testing.T) {
		f := newRefreshFixture()
		f.origin.set(constant.SourceLive, gamedata.TableStage, `[{"no":1}]`)
		_, err := f.cache.Get(ctx, constant.SourceLive, gamedata.TableStage)
		require.NoError(t, err)
		f.cache.Wait()

		f.origin.set(constant.SourceLive, gamedata.TableStage, `[{"no":2}]`)
		_, err = f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
		require.NoError(t, err)

		data, err := f.cache.Get(ctx, constant.SourceLive, gamedata.TableStage)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"no":2}]`, string(data))
	})

	t.Run("cancelled context fails the task", func(t *testing.T) {
		f := newRefreshFixture()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		task, err := f.svc.Run(cctx, constant.SourceLive, constant.TaskTypeManual)
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, task)

		stored := f.tasks.get(task.ID)
		assert.Equal(t, constant.TaskStatusFailed, stored.Status)
		require.NotNil(t, stored.ErrorMessage)
	})
}

func TestRefreshAutoConflict(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()
	require.NoError(t, f.tasks.CreateTask(ctx, &model.CacheUpdateTask{
		ID:         "running",
		TaskType:   constant.TaskTypeAuto,
		DataSource: constant.SourceAll,
		Status:     constant.TaskStatusRunning,
		StartedAt:  f.clock.Now().Add(-time.Minute),
	}))

	_, err := f.svc.Run(ctx, constant.SourceAll, constant.TaskTypeAuto)
	assert.ErrorIs(t, err, pgerr.ErrConflict)
	var pe *pgerr.PenguinError
	require.ErrorAs(t, err, &pe)
	require.NotNil(t, pe.Extras)
	assert.Equal(t, "running", (*pe.Extras)["taskId"])

	t.Run("manual refresh is not blocked", func(t *testing.T) {
		_, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
		assert.NoError(t, err)
	})
}

func TestRefreshAbandonedTask(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()
	require.NoError(t, f.tasks.CreateTask(ctx, &model.CacheUpdateTask{
		ID:         "crashed",
		TaskType:   constant.TaskTypeAuto,
		DataSource: constant.SourceAll,
		Status:     constant.TaskStatusRunning,
		StartedAt:  f.clock.Now().Add(-constant.RefreshLockExpiry),
	}))

	task, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeAuto)
	require.NoError(t, err)
	assert.Equal(t, constant.TaskStatusCompleted, task.Status)

	crashed := f.tasks.get("crashed")
	assert.Equal(t, constant.TaskStatusFailed, crashed.Status)
	require.NotNil(t, crashed.ErrorMessage)
	assert.Contains(t, *crashed.ErrorMessage, "abandoned")
	assert.NotNil(t, crashed.CompletedAt)
}

func TestRefreshUnchangedTables(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()
	f.origin.set(constant.SourceLive, gamedata.TableStage, `[{"no":1}]`)

	_, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
	require.NoError(t, err)
	assert.Equal(t, len(gamedata.Tables), f.store.puts)
	assert.Zero(t, f.store.touches)
	first, _ := f.store.entry(constant.SourceLive, gamedata.TableStage)
	firstFetched := first.FetchedAt

	f.clock.Advance(time.Hour)
	f.origin.set(constant.SourceLive, gamedata.TableHero, `[{"no":9}]`)
	task, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
	require.NoError(t, err)

	// only the changed table is rewritten, the rest have their fetch time renewed
	assert.Equal(t, len(gamedata.Tables)+1, f.store.puts)
	assert.Equal(t, len(gamedata.Tables)-1, f.store.touches)
	assert.Equal(t, len(gamedata.Tables), task.UpdatedFiles)

	stage, _ := f.store.entry(constant.SourceLive, gamedata.TableStage)
	assert.True(t, stage.FetchedAt.After(firstFetched))
	assert.JSONEq(t, `[{"no":1}]`, stage.Data)
}

func TestRefreshLocked(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()
	unlock, err := f.locker.Lock(ctx, constant.RefreshMutexName)
	require.NoError(t, err)

	_, err = f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
	assert.ErrorIs(t, err, ErrRefreshLocked)
	assert.Empty(t, f.tasks.tasks)

	unlock()
	_, err = f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
	assert.NoError(t, err)
}

func TestRefreshRunAsync(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()

	task, err := f.svc.RunAsync(ctx, constant.SourceReview, constant.TaskTypeManual)
	require.NoError(t, err)
	assert.Equal(t, constant.TaskStatusRunning, task.Status)
	assert.NotEmpty(t, task.ID)

	f.svc.Wait()
	stored := f.tasks.get(task.ID)
	assert.Equal(t, constant.TaskStatusCompleted, stored.Status)
	assert.Equal(t, len(gamedata.Tables), stored.UpdatedFiles)
}

func TestRefreshStatus(t *testing.T) {
	ctx := context.Background()
	f := newRefreshFixture()
	for i := 0; i < 12; i++ {
		_, err := f.svc.Run(ctx, constant.SourceLive, constant.TaskTypeManual)
		require.NoError(t, err)
	}

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, status.RecentTasks, constant.RecentTaskLimit)
	require.Len(t, status.CacheStats, 1)
	assert.Equal(t, constant.SourceLive, status.CacheStats[0].DataSource)
	assert.Equal(t, len(gamedata.Tables), status.CacheStats[0].Count)
}

func TestExpandTarget(t *testing.T) {
	assert.Equal(t, []string{constant.SourceLive, constant.SourceReview}, ExpandTarget(constant.SourceAll))
	assert.Equal(t, []string{constant.SourceReview}, ExpandTarget(constant.SourceReview))
}
