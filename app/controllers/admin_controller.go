package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/launchstack/SubRelay/internal/pkg/metrics/counter"
)

// AdminController serves operational endpoints behind basic auth.
type AdminController struct{}

func NewAdminController() *AdminController {
	return &AdminController{}
}

// HandleWebhookStats returns the per-provider webhook outcome counters.
func (ac *AdminController) HandleWebhookStats(c *fiber.Ctx) error {
	stats, err := counter.Snapshot()
	if err != nil {
		log.Errorf("webhook stats snapshot failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"webhooks": stats})
}
