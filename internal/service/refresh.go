package service

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/model/gamedata"
	"eversoul.dev/stageguide/internal/pkg/flog"
	"eversoul.dev/stageguide/internal/pkg/observability"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

var (
	ErrRefreshRunning = pgerr.ErrConflict.Msg("an automatic refresh task is already running")
	ErrRefreshLocked  = pgerr.ErrConflict.Msg("another instance is refreshing the cache")
)

type TaskStore interface {
	CreateTask(ctx context.Context, task *model.CacheUpdateTask) error
	UpdateTask(ctx context.Context, task *model.CacheUpdateTask) error
	// GetRunningTask returns pgerr.ErrNotFound when none is running.
	GetRunningTask(ctx context.Context, taskType string) (*model.CacheUpdateTask, error)
	GetRecentTasks(ctx context.Context, limit int) ([]*model.CacheUpdateTask, error)
}

// Locker serializes refreshes across instances.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

type RefreshOptions struct {
	Attempts uint
	Delay    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Refresh downloads every table of one or all sources into the persisted
// store, one table at a time, recording progress on a task.
type Refresh struct {
	Tasks   TaskStore
	Store   TableStore
	Fetcher TableFetcher
	Cache   *TableCache
	Locker  Locker

	opts RefreshOptions

	running sync.WaitGroup
}

func NewRefresh(tasks TaskStore, store TableStore, fetcher TableFetcher, tableCache *TableCache, locker Locker, opts RefreshOptions) *Refresh {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	return &Refresh{
		Tasks:   tasks,
		Store:   store,
		Fetcher: fetcher,
		Cache:   tableCache,
		Locker:  locker,
		opts:    opts,
	}
}

// ExpandTarget maps a refresh target to the sources it covers.
func ExpandTarget(target string) []string {
	if target == constant.SourceAll {
		return constant.Sources
	}
	return []string{target}
}

// Run refreshes target and returns the finished task. A run never outlasts
// the refresh mutex.
func (s *Refresh) Run(ctx context.Context, target, taskType string) (*model.CacheUpdateTask, error) {
	ctx, cancel := context.WithTimeout(ctx, constant.RefreshLockExpiry)
	defer cancel()

	task, unlock, err := s.begin(ctx, target, taskType)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.process(ctx, task); err != nil {
		return task, err
	}
	return task, nil
}

// RunAsync records the task and returns it right away; tables are refreshed in
// the background. Wait blocks until background refreshes finish.
func (s *Refresh) RunAsync(ctx context.Context, target, taskType string) (*model.CacheUpdateTask, error) {
	task, unlock, err := s.begin(ctx, target, taskType)
	if err != nil {
		return nil, err
	}

	snapshot := *task
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer unlock()

		bg, cancel := context.WithTimeout(flog.Detach(ctx), constant.RefreshLockExpiry)
		defer cancel()
		_ = s.process(bg, task)
	}()

	return &snapshot, nil
}

func (s *Refresh) Wait() {
	s.running.Wait()
}

func (s *Refresh) begin(ctx context.Context, target, taskType string) (*model.CacheUpdateTask, func(), error) {
	if taskType == constant.TaskTypeAuto {
		running, err := s.Tasks.GetRunningTask(ctx, constant.TaskTypeAuto)
		switch {
		case err == nil && s.abandoned(running):
			s.abandon(ctx, running)
		case err == nil:
			return nil, nil, ErrRefreshRunning.WithExtras(map[string]interface{}{"taskId": running.ID})
		case !errors.Is(err, pgerr.ErrNotFound):
			return nil, nil, errors.Wrap(err, "look up running refresh task")
		}
	}

	unlock, err := s.Locker.Lock(ctx, constant.RefreshMutexName)
	if err != nil {
		flog.Warn(ctx).
			Err(err).
			Str("evt.name", "refresh.lock.failed").
			Msg("failed to acquire refresh lock")
		return nil, nil, ErrRefreshLocked
	}

	task := &model.CacheUpdateTask{
		ID:         ulid.Make().String(),
		TaskType:   taskType,
		DataSource: target,
		Status:     constant.TaskStatusRunning,
		StartedAt:  s.opts.Now(),
	}
	if err := s.Tasks.CreateTask(ctx, task); err != nil {
		unlock()
		return nil, nil, errors.Wrap(err, "create refresh task")
	}

	flog.Info(ctx).
		Str("evt.name", "refresh.started").
		Str("taskId", task.ID).
		Str("taskType", taskType).
		Str("target", target).
		Msg("refresh task started")

	return task, unlock, nil
}

// abandoned reports whether a running task has outlived the refresh mutex,
// which happens when the process running it died.
func (s *Refresh) abandoned(task *model.CacheUpdateTask) bool {
	return s.opts.Now().Sub(task.StartedAt) >= constant.RefreshLockExpiry
}

func (s *Refresh) abandon(ctx context.Context, task *model.CacheUpdateTask) {
	msg := "abandoned: still running after the refresh lock expired"
	completedAt := s.opts.Now()
	task.Status = constant.TaskStatusFailed
	task.CompletedAt = &completedAt
	task.ErrorMessage = &msg

	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		flog.Warn(ctx).
			Err(err).
			Str("evt.name", "refresh.abandon.record_failed").
			Str("taskId", task.ID).
			Msg("failed to mark abandoned refresh task")
		return
	}
	flog.Warn(ctx).
		Str("evt.name", "refresh.abandoned").
		Str("taskId", task.ID).
		Time("startedAt", task.StartedAt).
		Msg("marked abandoned refresh task as failed")
}

func (s *Refresh) process(ctx context.Context, task *model.CacheUpdateTask) error {
	start := time.Now()
	defer func() {
		observability.RefreshDuration.WithLabelValues(task.TaskType).Set(time.Since(start).Seconds())
	}()

	for _, source := range ExpandTarget(task.DataSource) {
		for _, table := range gamedata.Tables {
			if err := ctx.Err(); err != nil {
				return s.fail(ctx, task, err)
			}

			changed, err := s.refreshTable(ctx, source, table)
			if err != nil {
				observability.RefreshTablesUpdated.WithLabelValues(source, "failed").Inc()
				flog.Warn(ctx).
					Err(err).
					Str("evt.name", "refresh.table.failed").
					Str("taskId", task.ID).
					Str("source", source).
					Str("table", table).
					Msg("failed to refresh table, skipping")
				continue
			}

			outcome := "updated"
			if !changed {
				outcome = "unchanged"
			}
			observability.RefreshTablesUpdated.WithLabelValues(source, outcome).Inc()
			task.UpdatedFiles++
			if err := s.Tasks.UpdateTask(ctx, task); err != nil {
				flog.Warn(ctx).
					Err(err).
					Str("evt.name", "refresh.progress.failed").
					Str("taskId", task.ID).
					Msg("failed to record refresh progress")
			}
		}

		// next read of this source is served from the rows just persisted
		if s.Cache != nil {
			s.Cache.Invalidate(source)
		}
	}

	completedAt := s.opts.Now()
	task.Status = constant.TaskStatusCompleted
	task.CompletedAt = &completedAt
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return s.fail(ctx, task, errors.Wrap(err, "complete refresh task"))
	}

	flog.Info(ctx).
		Str("evt.name", "refresh.completed").
		Str("taskId", task.ID).
		Int("updatedFiles", task.UpdatedFiles).
		Dur("duration", time.Since(start)).
		Msg("refresh task completed")

	return nil
}

// fail marks the task failed on a fresh context, since ctx may be the reason.
func (s *Refresh) fail(ctx context.Context, task *model.CacheUpdateTask, cause error) error {
	msg := cause.Error()
	completedAt := s.opts.Now()
	task.Status = constant.TaskStatusFailed
	task.CompletedAt = &completedAt
	task.ErrorMessage = &msg

	rctx, cancel := context.WithTimeout(flog.Detach(ctx), 10*time.Second)
	defer cancel()
	if err := s.Tasks.UpdateTask(rctx, task); err != nil {
		flog.Error(ctx).
			Err(err).
			Str("evt.name", "refresh.fail.record_failed").
			Str("taskId", task.ID).
			Msg("failed to record refresh failure")
	}

	flog.Error(ctx).
		Err(cause).
		Str("evt.name", "refresh.failed").
		Str("taskId", task.ID).
		Msg("refresh task failed")

	return cause
}

// refreshTable downloads one table and persists it. A table whose content is
// unchanged only has its fetch time renewed; changed reports which happened.
func (s *Refresh) refreshTable(ctx context.Context, source, table string) (changed bool, err error) {
	var data json.RawMessage
	err = retry.Do(
		func() error {
			d, err := s.Fetcher.Fetch(ctx, source, table)
			if err != nil {
				return err
			}
			data = d
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.opts.Attempts),
		retry.Delay(s.opts.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			flog.Debug(ctx).
				Err(err).
				Str("evt.name", "refresh.table.retry").
				Str("source", source).
				Str("table", table).
				Uint("attempt", n+1).
				Msg("retrying table download")
		}),
	)
	if err != nil {
		return false, err
	}

	entry := NewCacheEntry(source, table, data, s.opts.Now())
	if prev, err := s.Store.GetEntry(ctx, source, table); err == nil && prev.IsValid && prev.Checksum == entry.Checksum {
		err := s.Store.TouchEntry(ctx, source, table, entry.FetchedAt)
		if err == nil {
			flog.Debug(ctx).
				Str("evt.name", "refresh.table.unchanged").
				Str("source", source).
				Str("table", table).
				Msg("table content unchanged, renewed fetch time")
			return false, nil
		}
		if !errors.Is(err, pgerr.ErrNotFound) {
			return false, errors.Wrap(err, "renew persisted table")
		}
	}

	return true, s.Store.UpsertEntry(ctx, entry)
}

func (s *Refresh) Status(ctx context.Context) (*model.RefreshStatus, error) {
	tasks, err := s.Tasks.GetRecentTasks(ctx, constant.RecentTaskLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list recent refresh tasks")
	}
	stats, err := s.Store.CountBySource(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count persisted tables")
	}
	return &model.RefreshStatus{
		RecentTasks: tasks,
		CacheStats:  stats,
	}, nil
}
