// Package flog carries a request scoped zerolog logger from fiber handlers
// down into the service layer.
package flog

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type idKey struct{}

// From returns the logger carried by ctx, or the global logger when ctx
// carries none. Background jobs without a request get the global logger.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &log.Logger
}

// FromFiberCtx gets the logger of the request.
func FromFiberCtx(c *fiber.Ctx) *zerolog.Logger {
	return From(c.UserContext())
}

// Detach returns a context without deadline or cancellation that still
// carries the logger and request id of ctx. Work outliving a request starts
// from it.
func Detach(ctx context.Context) context.Context {
	detached := From(ctx).WithContext(context.Background())
	if id, ok := IDFromCtx(ctx); ok {
		detached = CtxWithID(detached, id)
	}
	return detached
}

func Debug(ctx context.Context) *zerolog.Event { return From(ctx).Debug() }

func Info(ctx context.Context) *zerolog.Event { return From(ctx).Info() }

func Warn(ctx context.Context) *zerolog.Event { return From(ctx).Warn() }

func Error(ctx context.Context) *zerolog.Event { return From(ctx).Error() }

// NewHandlerMiddleware injects a copy of l into the request context. Each
// request gets its own copy so UpdateContext never races across requests.
func NewHandlerMiddleware(l zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqLogger := l.With().Logger()
		c.SetUserContext(reqLogger.WithContext(c.UserContext()))
		return c.Next()
	}
}

// RequestFieldsHandler records the caller address, method, path and user
// agent on the request logger.
func RequestFieldsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		FromFiberCtx(c).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.
				Str("ip", c.IP()).
				Str("method", c.Method()).
				Str("url", c.Path()).
				Str("user_agent", c.Get(fiber.HeaderUserAgent))
		})
		return c.Next()
	}
}

// IDFromFiberCtx returns the request id of c if one was assigned.
func IDFromFiberCtx(c *fiber.Ctx) (id xid.ID, ok bool) {
	if c == nil {
		return
	}
	return IDFromCtx(c.UserContext())
}

func IDFromCtx(ctx context.Context) (id xid.ID, ok bool) {
	id, ok = ctx.Value(idKey{}).(xid.ID)
	return
}

func CtxWithID(ctx context.Context, id xid.ID) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// RequestIDHandler assigns an xid to every request, records it on the request
// logger under fieldKey and echoes it in headerName when that is not empty.
func RequestIDHandler(fieldKey, headerName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IDFromFiberCtx(c)
		if !ok {
			id = xid.New()
			c.SetUserContext(CtxWithID(c.UserContext(), id))
		}
		if fieldKey != "" {
			FromFiberCtx(c).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Str(fieldKey, id.String())
			})
		}
		if headerName != "" {
			c.Set(headerName, id.String())
		}
		return c.Next()
	}
}

// AccessHandler calls f after each request with the time it took.
func AccessHandler(f func(c *fiber.Ctx, duration time.Duration)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		f(c, time.Since(start))
		return err
	}
}
