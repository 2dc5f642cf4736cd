package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/pkg/pgerr"
)

// AdminAuth requires "Authorization: Bearer <key>". An empty key rejects
// every request.
func AdminAuth(key string) fiber.Handler {
	if key == "" {
		log.Warn().
			Str("evt.name", "http.admin.disabled").
			Msg("admin key is not configured; every admin request will be rejected")
	}

	return func(c *fiber.Ctx) error {
		if key == "" {
			return pgerr.ErrUnauthorized
		}

		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, constant.AdminAuthorizationRealm) {
			return pgerr.ErrUnauthorized
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(key)) != 1 {
			return pgerr.ErrUnauthorized
		}

		return c.Next()
	}
}
