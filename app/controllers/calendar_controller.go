package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/composer"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/schedule"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

type schedulePostRequest struct {
	ContentID string `json:"content_id"`
	LocalDate string `json:"date"`
	LocalTime string `json:"time"`
	Platform  string `json:"platform"`
	Title     string `json:"title"`
	Notes     string `json:"notes"`
}

// HandleCalendarMonth returns the month view: scheduled posts grouped by the
// viewer's local day. Previewing users get demo fixtures, never stored data.
func HandleCalendarMonth(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	now := time.Now()
	year, _ := strconv.Atoi(c.Query("year", strconv.Itoa(now.Year())))
	monthNum, _ := strconv.Atoi(c.Query("month", strconv.Itoa(int(now.Month()))))
	if year < 2000 || year > 2100 || monthNum < 1 || monthNum > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid year or month"})
	}
	month := time.Month(monthNum)

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}
	loc := settings.Location()

	gate := gateFor(c, entitlements.FeatureCalendar)

	var days map[schedule.DayKey][]models.ScheduledPost
	err = gate.Dispatch(featuregate.ActionRead, func() error {
		if gate.State() == featuregate.StatePreview {
			days = featuregate.DemoCalendar(year, month, loc)
			return nil
		}

		startUTC, endUTC := schedule.MonthWindow(year, month, loc)
		posts, err := repository.GetGlobalFactory().GetScheduleRepository().ListByUserBetween(userCtx.UserID, startUTC, endUTC)
		if err != nil {
			return err
		}
		days = make(map[schedule.DayKey][]models.ScheduledPost)
		for _, p := range posts {
			key := schedule.DayKeyOf(p.ScheduledAtUTC, loc)
			days[key] = append(days[key], p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, featuregate.ErrFeatureLocked) {
			return respondLocked(c, gate)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load calendar"})
	}

	contentRepo := repository.GetGlobalFactory().GetContentRepository()
	out := fiber.Map{}
	for key, posts := range days {
		entries := make([]fiber.Map, 0, len(posts))
		for _, p := range posts {
			entries = append(entries, calendarEntry(&p, loc, contentRepo, gate.State() == featuregate.StatePreview))
		}
		out[string(key)] = entries
	}

	return c.JSON(fiber.Map{
		"year":  year,
		"month": int(month),
		"days":  out,
		"gate":  gateEnvelope(gate),
	})
}

// HandleSchedulePost creates a scheduled post from a local wall-clock selection.
func HandleSchedulePost(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	var req schedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if req.Platform == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Platform is required"})
	}

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	persistable, err := schedule.ToPersistable(schedule.Selection{
		ContentID: req.ContentID,
		LocalDate: req.LocalDate,
		LocalTime: req.LocalTime,
	}, settings.Location())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_selection", "message": "Invalid date, time or content reference"})
	}

	contentRepo := repository.GetGlobalFactory().GetContentRepository()
	item, err := contentRepo.GetItemByUUID(persistable.GeneratedContentID)
	if err != nil || item.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "content_not_found", "message": "Referenced content does not exist"})
	}

	gate := gateFor(c, entitlements.FeatureCalendar)
	post := &models.ScheduledPost{
		UserID:         userCtx.UserID,
		ContentUUID:    persistable.GeneratedContentID,
		ScheduledAtUTC: persistable.ScheduledAtUTC,
		Platform:       req.Platform,
		Title:          req.Title,
		Notes:          req.Notes,
	}

	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		return repository.GetGlobalFactory().GetScheduleRepository().Create(post)
	})
	if err != nil {
		return scheduleMutationError(c, gate, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "post": calendarEntry(post, settings.Location(), contentRepo, false)})
}

// HandleUpdateScheduledPost moves or edits an existing scheduled post.
func HandleUpdateScheduledPost(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	scheduleRepo := repository.GetGlobalFactory().GetScheduleRepository()
	post, err := scheduleRepo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Scheduled post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load scheduled post"})
	}
	if post.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Scheduled post not found"})
	}

	var req schedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	if req.LocalDate != "" || req.LocalTime != "" {
		date, timeOfDay := schedule.FromPersisted(post.ScheduledAtUTC, settings.Location())
		if req.LocalDate != "" {
			date = req.LocalDate
		}
		if req.LocalTime != "" {
			timeOfDay = req.LocalTime
		}
		persistable, err := schedule.ToPersistable(schedule.Selection{
			ContentID: post.ContentUUID,
			LocalDate: date,
			LocalTime: timeOfDay,
		}, settings.Location())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_selection", "message": "Invalid date or time"})
		}
		post.ScheduledAtUTC = persistable.ScheduledAtUTC
	}
	if req.Platform != "" {
		post.Platform = req.Platform
	}
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Notes != "" {
		post.Notes = req.Notes
	}

	gate := gateFor(c, entitlements.FeatureCalendar)
	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		return scheduleRepo.Update(post)
	})
	if err != nil {
		return scheduleMutationError(c, gate, err)
	}

	contentRepo := repository.GetGlobalFactory().GetContentRepository()
	return c.JSON(fiber.Map{"ok": true, "post": calendarEntry(post, settings.Location(), contentRepo, false)})
}

// HandleDeleteScheduledPost removes a scheduled post.
func HandleDeleteScheduledPost(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	scheduleRepo := repository.GetGlobalFactory().GetScheduleRepository()
	post, err := scheduleRepo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Scheduled post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load scheduled post"})
	}
	if post.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Scheduled post not found"})
	}

	gate := gateFor(c, entitlements.FeatureCalendar)
	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		return scheduleRepo.Delete(post.ID)
	})
	if err != nil {
		return scheduleMutationError(c, gate, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func scheduleMutationError(c *fiber.Ctx, gate *featuregate.Machine, err error) error {
	switch {
	case errors.Is(err, featuregate.ErrPreviewMutation):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "preview_mutation",
			"message": err.Error(),
			"gate":    gateEnvelope(gate),
		})
	case errors.Is(err, featuregate.ErrFeatureLocked):
		return respondLocked(c, gate)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save scheduled post"})
	}
}

// calendarEntry renders one scheduled post. A dangling content reference
// degrades to an absent preview instead of failing the whole view.
func calendarEntry(post *models.ScheduledPost, loc *time.Location, contentRepo repository.ContentRepository, demo bool) fiber.Map {
	date, timeOfDay := schedule.FromPersisted(post.ScheduledAtUTC, loc)

	entry := fiber.Map{
		"uuid":             post.UUID,
		"content_id":       post.ContentUUID,
		"scheduled_at_utc": post.ScheduledAtUTC.UTC().Format(time.RFC3339),
		"date":             date,
		"time":             timeOfDay,
		"platform":         post.Platform,
		"title":            post.Title,
		"notes":            post.Notes,
	}

	if demo {
		return entry
	}

	if item, err := contentRepo.GetItemByUUID(post.ContentUUID); err == nil && !composer.IsErrorContent(item.Content) {
		preview := item.Content
		if len(preview) > 140 {
			preview = preview[:140] + "…"
		}
		entry["content_preview"] = fiber.Map{
			"format":  item.Format,
			"excerpt": preview,
		}
	}

	return entry
}
