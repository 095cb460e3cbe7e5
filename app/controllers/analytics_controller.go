package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

const (
	analyticsDefaultDays = 30
	analyticsMaxDays     = 365
)

// HandleAnalytics returns per-day generation and scheduling counts for the
// trailing window. Previewing users get demo fixtures.
func HandleAnalytics(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	days, _ := strconv.Atoi(c.Query("days", strconv.Itoa(analyticsDefaultDays)))
	if days < 1 || days > analyticsMaxDays {
		days = analyticsDefaultDays
	}

	gate := gateFor(c, entitlements.FeatureAnalytics)

	var generations, scheduled []models.DailyStats
	err := gate.Dispatch(featuregate.ActionRead, func() error {
		if gate.State() == featuregate.StatePreview {
			generations = featuregate.DemoAnalytics()
			scheduled = featuregate.DemoAnalytics()
			return nil
		}

		end := time.Now().UTC()
		start := end.AddDate(0, 0, -days)

		contentRepo := repository.GetGlobalFactory().GetContentRepository()
		scheduleRepo := repository.GetGlobalFactory().GetScheduleRepository()

		var err error
		generations, err = contentRepo.GetDailyGenerationStats(userCtx.UserID, start, end)
		if err != nil {
			return err
		}
		scheduled, err = scheduleRepo.GetDailyScheduleStats(userCtx.UserID, start, end)
		return err
	})
	if err != nil {
		if errors.Is(err, featuregate.ErrFeatureLocked) {
			return respondLocked(c, gate)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load analytics"})
	}

	return c.JSON(fiber.Map{
		"days":        days,
		"generations": generations,
		"scheduled":   scheduled,
		"gate":        gateEnvelope(gate),
	})
}
