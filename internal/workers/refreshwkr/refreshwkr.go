package refreshwkr

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"eversoul.dev/stageguide/internal/app/appconfig"
	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
	"eversoul.dev/stageguide/internal/service"
)

type WorkerDeps struct {
	fx.In

	RefreshService *service.Refresh
}

type Worker struct {
	// count counts batches worker has completed so far
	count int

	// interval describes the interval in-between automatic refreshes
	interval time.Duration

	done chan struct{}

	// deps
	WorkerDeps
}

func Start(conf *appconfig.Config, lc fx.Lifecycle, deps WorkerDeps) {
	if !conf.RefreshWorkerEnabled {
		log.Info().
			Str("evt.name", "worker.refresh.disabled").
			Msg("automatic refresh worker disabled")
		return
	}

	w := &Worker{
		interval:   conf.RefreshWorkerInterval,
		done:       make(chan struct{}),
		WorkerDeps: deps,
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cancel = w.do()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-w.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func (w *Worker) do() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.batch(ctx)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}

func (w *Worker) batch(ctx context.Context) {
	log.Info().
		Str("evt.name", "worker.refresh.started").
		Int("count", w.count).
		Msg("worker batch started")

	task, err := w.RefreshService.Run(ctx, constant.SourceAll, constant.TaskTypeAuto)
	switch {
	case errors.Is(err, pgerr.ErrConflict):
		log.Info().
			Err(err).
			Str("evt.name", "worker.refresh.skipped").
			Msg("another refresh is in progress, skipping batch")
	case err != nil:
		log.Error().
			Err(err).
			Str("evt.name", "worker.refresh.failed").
			Int("count", w.count).
			Msg("worker batch failed")
	default:
		log.Info().
			Str("evt.name", "worker.refresh.finished").
			Int("count", w.count).
			Str("taskId", task.ID).
			Int("updatedFiles", task.UpdatedFiles).
			Msg("worker batch finished")
	}

	w.count++
}
