package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/composer"
	"github.com/postwiselab/Postwise/internal/pkg/metrics/counter"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

const (
	historyDefaultPageSize = 20
	historyMaxPageSize     = 100
)

// HandleHistoryList returns the user's past generation requests, newest
// first, each with its composed groups.
func HandleHistoryList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size", strconv.Itoa(historyDefaultPageSize)))
	if pageSize < 1 || pageSize > historyMaxPageSize {
		pageSize = historyDefaultPageSize
	}

	repo := repository.GetGlobalFactory().GetContentRepository()
	total, err := repo.CountRequestsByUser(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load history"})
	}

	requests, err := repo.ListRequestsByUser(userCtx.UserID, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load history"})
	}

	entries := make([]fiber.Map, 0, len(requests))
	for _, req := range requests {
		entries = append(entries, historyEntry(&req))
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"requests":  entries,
	})
}

// HandleHistoryDetail returns one generation request with composed groups.
func HandleHistoryDetail(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	repo := repository.GetGlobalFactory().GetContentRepository()
	req, err := repo.GetRequestWithItems(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Generation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load generation"})
	}
	if req.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Generation not found"})
	}

	// Best effort, the counter is flushed to the database periodically.
	if err := counter.AddRequestView(req.ID); err != nil {
		log.Warnf("[History] Failed to record view for request %s: %v", req.UUID, err)
	}

	return c.JSON(historyEntry(req))
}

// HandleHistoryDelete soft-deletes a generation request. Scheduled posts that
// reference its items are kept; their content preview degrades to absent.
func HandleHistoryDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	repo := repository.GetGlobalFactory().GetContentRepository()
	req, err := repo.GetRequestByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Generation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load generation"})
	}
	if req.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Generation not found"})
	}

	if err := repo.DeleteRequest(req.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete generation"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

func historyEntry(req *models.GenerationRequest) fiber.Map {
	items := make([]composer.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, composer.Item{
			ID:            it.UUID,
			Format:        it.Format,
			VariantNumber: it.VariantNumber,
			Content:       it.Content,
			CreatedAt:     it.CreatedAt,
		})
	}

	entry := fiber.Map{
		"uuid":              req.UUID,
		"source_text":       req.SourceText,
		"tone":              req.Tone,
		"language":          req.Language,
		"used_trial":        req.UsedTrial,
		"credits_remaining": req.CreditsRemaining,
		"created_at":        req.CreatedAt,
		"groups":            composer.Compose(items),
	}

	if req.HashtagsJSON != "" {
		var hashtags []string
		if err := json.Unmarshal([]byte(req.HashtagsJSON), &hashtags); err == nil {
			entry["hashtags"] = hashtags
		}
	}
	if req.SuggestionsJSON != "" {
		var suggestions map[string]any
		if err := json.Unmarshal([]byte(req.SuggestionsJSON), &suggestions); err == nil {
			entry["ai_suggestions"] = suggestions
		}
	}

	return entry
}
