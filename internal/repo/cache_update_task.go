package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/model"
	"eversoul.dev/stageguide/internal/repo/selector"
)

type CacheUpdateTask struct {
	db  *bun.DB
	sel selector.S[model.CacheUpdateTask]
}

func NewCacheUpdateTask(db *bun.DB) *CacheUpdateTask {
	return &CacheUpdateTask{db: db, sel: selector.New[model.CacheUpdateTask](db)}
}

func (r *CacheUpdateTask) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*model.CacheUpdateTask)(nil)).
		IfNotExists().
		Exec(ctx)
	return errors.Wrap(err, "create table cache_update_tasks")
}

func (r *CacheUpdateTask) CreateTask(ctx context.Context, task *model.CacheUpdateTask) error {
	_, err := r.db.NewInsert().
		Model(task).
		Exec(ctx)
	return err
}

// UpdateTask persists the progress and outcome columns of task.
func (r *CacheUpdateTask) UpdateTask(ctx context.Context, task *model.CacheUpdateTask) error {
	_, err := r.db.NewUpdate().
		Model(task).
		Column("status", "updated_files", "completed_at", "error_message").
		WherePK().
		Exec(ctx)
	return err
}

// GetRunningTask returns pgerr.ErrNotFound when no task of taskType is running.
func (r *CacheUpdateTask) GetRunningTask(ctx context.Context, taskType string) (*model.CacheUpdateTask, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("task_type = ?", taskType).
			Where("status = ?", constant.TaskStatusRunning).
			Order("started_at DESC").
			Limit(1)
	})
}

func (r *CacheUpdateTask) GetRecentTasks(ctx context.Context, limit int) ([]*model.CacheUpdateTask, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("started_at DESC").Limit(limit)
	})
}
