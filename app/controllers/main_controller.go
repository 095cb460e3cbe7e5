package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/statistics"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

// HandleHealth is the unauthenticated liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleAdminStats returns the cached platform aggregates for the admin dashboard.
func HandleAdminStats(c *fiber.Ctx) error {
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Admin access required"})
	}

	data := statistics.GetStatisticsData()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	signups, err := repository.GetGlobalFactory().GetUserRepository().GetDailyStats(start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load signup stats"})
	}

	return c.JSON(fiber.Map{
		"today_generations": data.TodayGenerations,
		"total_content":     data.TotalContent,
		"total_users":       data.TotalUsers,
		"signups_daily":     signups,
	})
}
