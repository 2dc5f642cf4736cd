package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"eversoul.dev/stageguide/internal/util/rekuest"
)

const BodyLocalsKey = "body"

// InjectValidBody parses and validates the body as T, storing a *T under
// BodyLocalsKey.
func InjectValidBody[T any]() func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		dest := new(T)
		if err := rekuest.ValidBody(ctx, dest); err != nil {
			return err
		}

		ctx.Locals(BodyLocalsKey, dest)

		return ctx.Next()
	}
}

// Body returns the value stored by InjectValidBody.
func Body[T any](ctx *fiber.Ctx) *T {
	return ctx.Locals(BodyLocalsKey).(*T)
}
