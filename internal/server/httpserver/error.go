package httpserver

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
	"eversoul.dev/stageguide/internal/service"
)

func HandleCustomError(ctx *fiber.Ctx, e *pgerr.PenguinError) error {
	log.Warn().
		Err(e).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func translateError(err error) (*pgerr.PenguinError, bool) {
	var pe *pgerr.PenguinError
	if errors.As(err, &pe) {
		return pe, true
	}

	var oe *service.OriginError
	if errors.As(err, &oe) {
		return pgerr.ErrUpstreamUnavailable.WithExtras(pgerr.Extras{
			"upstreamStatus": oe.StatusCode,
			"url":            oe.URL,
		}), true
	}

	if errors.Is(err, service.ErrMalformedTable) {
		return pgerr.ErrUpstreamUnavailable.Msg("upstream unavailable: game data origin returned a malformed table"), true
	}

	return nil, false
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if e, ok := translateError(err); ok {
		return HandleCustomError(ctx, e)
	}

	// Default 500 statuscode
	re := *pgerr.ErrInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		// Overwrite status code if fiber.Error type & provided code
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
	}

	log.Error().
		Stack().
		Err(err).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		if id, ok := ctx.Locals(constant.ContextKeyRequestID).(string); ok {
			hub.Scope().SetUser(sentry.User{ID: id})
		}
		hub.CaptureException(err)
	}

	return HandleCustomError(ctx, &re)
}
