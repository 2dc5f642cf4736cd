package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/util/rekuest"
)

func ValidateSourceAsQuery(c *fiber.Ctx) error {
	if err := rekuest.ValidVar(c, c.Query("source", constant.SourceLive), "datasource"); err != nil {
		return err
	}
	return c.Next()
}

func ValidateSourceAsParam(c *fiber.Ctx) error {
	if err := rekuest.ValidVar(c, c.Params("source"), "datasource"); err != nil {
		return err
	}
	return c.Next()
}

func ValidateTableAsParam(c *fiber.Ctx) error {
	if err := rekuest.ValidVar(c, c.Params("table"), "gametable"); err != nil {
		return err
	}
	return c.Next()
}
