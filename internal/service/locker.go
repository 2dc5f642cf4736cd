package service

import (
	"context"

	"github.com/go-redsync/redsync/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"eversoul.dev/stageguide/internal/constant"
)

// RedSyncLocker takes a redis mutex, failing fast if another holder exists.
type RedSyncLocker struct {
	rs *redsync.Redsync
}

func NewRedSyncLocker(rs *redsync.Redsync) *RedSyncLocker {
	return &RedSyncLocker{rs: rs}
}

func (l *RedSyncLocker) Lock(ctx context.Context, name string) (func(), error) {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(constant.RefreshLockExpiry), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Wrap(err, "acquire "+name)
	}
	return func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "refresh.lock.release_failed").
				Str("mutex", name).
				Msg("failed to release mutex")
		}
	}, nil
}
