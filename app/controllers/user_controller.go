package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/session"
	"github.com/postwiselab/Postwise/internal/pkg/trial"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

var settingsValidator = validator.New()

type updateSettingsRequest struct {
	DefaultTone     string `json:"default_tone" validate:"omitempty,min=2,max=50"`
	DefaultLanguage string `json:"default_language" validate:"omitempty,min=2,max=10"`
	Timezone        string `json:"timezone" validate:"omitempty,max=64"`
}

// HandleGetUserAccount returns account information for the authenticated user (API key or session).
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	stats, err := repo.GetStatsByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load statistics"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	plan := entitlements.NormalizePlan(settings.Plan)
	ent := entitlements.EntitlementFor(plan)

	trialStatus, _ := trial.NewLedger(trial.NewRepository(db)).FetchStatus(userCtx.UserID)

	features := fiber.Map{}
	for _, feature := range entitlements.Features {
		features[string(feature)] = fiber.Map{
			"enabled": ent.Features[feature],
			"state":   featuregate.Evaluate(feature, plan, trialStatus),
		}
	}

	response := fiber.Map{
		"id":            account.ID,
		"username":      account.Name,
		"email":         account.Email,
		"status":        account.Status,
		"plan":          string(plan),
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"stats": fiber.Map{
			"generations": stats.GenerationCount,
			"contents":    stats.ContentCount,
			"scheduled":   stats.ScheduledCount,
		},
		"limits": fiber.Map{
			"allowed_tones":   ent.AllowedTones,
			"allowed_formats": ent.AllowedFormats,
			"max_variants":    ent.MaxVariants,
		},
		"trial": fiber.Map{
			"eligible": trialStatus.Eligible,
			"used":     trialStatus.Used,
		},
		"features": features,
		"preferences": fiber.Map{
			"default_tone":     settings.DefaultTone,
			"default_language": settings.DefaultLanguage,
			"timezone":         settings.Timezone,
		},
		"api_key": fiber.Map{
			"active":       settings.HasActiveAPIKey(),
			"prefix":       settings.APIKeyPrefix,
			"created_at":   formatTimePtr(settings.APIKeyCreatedAt),
			"last_used_at": formatTimePtr(settings.APIKeyLastUsedAt),
		},
	}

	return c.JSON(response)
}

// HandleUpdateUserSettings updates default tone, language and timezone.
func HandleUpdateUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := settingsValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	plan := entitlements.NormalizePlan(settings.Plan)

	if tone := strings.TrimSpace(req.DefaultTone); tone != "" {
		if !entitlements.AllowsTone(plan, entitlements.Tone(tone)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tone_not_allowed", "message": "This tone is not included in your plan"})
		}
		settings.DefaultTone = tone
	}
	if lang := strings.TrimSpace(req.DefaultLanguage); lang != "" {
		settings.DefaultLanguage = lang
	}
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_timezone", "message": "Unknown timezone"})
		}
		settings.Timezone = tz
	}

	if err := db.Save(settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save settings"})
	}

	return c.JSON(fiber.Map{
		"ok": true,
		"preferences": fiber.Map{
			"default_tone":     settings.DefaultTone,
			"default_language": settings.DefaultLanguage,
			"timezone":         settings.Timezone,
		},
	})
}

// HandleIssueAPIKey issues a fresh API key, revoking any previous one. The
// raw key is returned exactly once.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	plan := entitlements.NormalizePlan(settings.Plan)
	if !entitlements.HasFeature(plan, entitlements.FeatureAPIAccess) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "feature_locked", "message": "API access is not included in your plan"})
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Key generation failed"})
	}
	if err := db.Save(settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save key"})
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"api_key":    rawKey,
		"prefix":     settings.APIKeyPrefix,
		"created_at": formatTimePtr(settings.APIKeyCreatedAt),
	})
}

// HandleRevokeAPIKey revokes the current API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to revoke key"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleActivatePreview records the preview choice for a locked feature in
// the session, so subsequent reads of that screen resume in preview.
func HandleActivatePreview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	feature := entitlements.Feature(strings.TrimSpace(c.Params("feature")))
	known := false
	for _, f := range entitlements.Features {
		if f == feature {
			known = true
			break
		}
	}
	if !known {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown feature"})
	}

	gate := gateFor(c, feature)
	if err := gate.ActivatePreview(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "preview_unavailable", "message": err.Error()})
	}

	if err := session.SetSessionValue(c, previewSessionKey(feature), "1"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session save failed"})
	}

	return c.JSON(fiber.Map{"ok": true, "gate": gateEnvelope(gate)})
}
