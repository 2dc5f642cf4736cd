package flog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFallsBackToGlobal(t *testing.T) {
	assert.Same(t, &log.Logger, From(context.Background()))
}

func TestDetach(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
	id := xid.New()

	ctx, cancel := context.WithTimeout(CtxWithID(l.WithContext(context.Background()), id), time.Minute)
	cancel()

	detached := Detach(ctx)
	assert.NoError(t, detached.Err())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)

	got, ok := IDFromCtx(detached)
	require.True(t, ok)
	assert.Equal(t, id, got)

	Info(detached).Msg("detached")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
