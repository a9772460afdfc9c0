package handlers

import (
	"github.com/RamPrasathM-2005/College-Integration-sub001/database"
	"github.com/RamPrasathM-2005/College-Integration-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports service and database liveness
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, err.Error())
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
