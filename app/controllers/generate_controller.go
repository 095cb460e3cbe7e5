package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/composer"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/generation"
	"github.com/postwiselab/Postwise/internal/pkg/trial"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

const maxSourceTextLen = 10000

type generateRequest struct {
	Text     string   `json:"text"`
	Tone     string   `json:"tone"`
	Language string   `json:"language"`
	Formats  []string `json:"formats"`
	Variants int      `json:"variants"`
	UseTrial bool     `json:"use_trial"`
}

// engineClient is swapped in tests.
var engineClient = func() *generation.Client { return generation.NewClientFromEnv() }

// HandleGenerate runs one rewrite: validate against entitlements, call the
// engine, persist the request with its items and answer with composed groups.
// The engine stays authoritative for trial enforcement; the local checks are
// an advisory mirror so obviously over-plan requests never leave the process.
func HandleGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	db := database.GetDB()
	appSettings := models.GetAppSettings()
	if !appSettings.IsGenerationEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "generation_disabled", "message": "Generation is temporarily disabled"})
	}

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Text is required"})
	}
	if len(req.Text) > maxSourceTextLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text_too_long", "message": "Text exceeds the maximum length"})
	}

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	plan := entitlements.NormalizePlan(settings.Plan)
	ledger := trial.NewLedger(trial.NewRepository(db))

	// One account-lifetime trial lifts a free account to pro allowances for a
	// single generation. Eligibility is fail-closed: an unreadable ledger
	// means no trial.
	effectivePlan := plan
	useTrial := false
	if req.UseTrial {
		if plan != entitlements.PlanFree {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trial_not_applicable", "message": "Your plan already includes these features"})
		}
		status, err := ledger.FetchStatus(userCtx.UserID)
		if err != nil || !status.Eligible || status.Used {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "trial_unavailable", "message": "Your free trial has already been used"})
		}
		effectivePlan = entitlements.PlanPro
		useTrial = true
	}

	tone := strings.ToLower(strings.TrimSpace(req.Tone))
	if tone == "" {
		tone = settings.DefaultTone
	}
	if !entitlements.AllowsTone(effectivePlan, entitlements.Tone(tone)) &&
		!entitlements.HasFeature(effectivePlan, entitlements.FeatureCustomTones) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "tone_not_allowed", "message": "This tone is not included in your plan"})
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = settings.DefaultLanguage
	}

	ent := entitlements.EntitlementFor(effectivePlan)
	formats := req.Formats
	if len(formats) == 0 {
		for _, f := range ent.AllowedFormats {
			formats = append(formats, string(f))
		}
	} else {
		for i, f := range formats {
			formats[i] = strings.ToLower(strings.TrimSpace(f))
			if !entitlements.AllowsFormat(effectivePlan, entitlements.Format(formats[i])) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "format_not_allowed", "message": "Format " + formats[i] + " is not included in your plan"})
			}
		}
	}

	variants := req.Variants
	if variants <= 0 {
		variants = ent.MaxVariants
	}
	if variants > ent.MaxVariants {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "too_many_variants", "message": "Your plan allows fewer variants"})
	}

	wantHashtags := ent.Features[entitlements.FeatureHashtags]
	wantSuggestions := ent.Features[entitlements.FeatureAISuggestions]

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	resp, err := engineClient().Generate(ctx, generation.Request{
		Text:        req.Text,
		Tone:        tone,
		Language:    language,
		Formats:     formats,
		Variants:    variants,
		UseTrial:    useTrial,
		Hashtags:    wantHashtags,
		Suggestions: wantSuggestions,
	})
	if err != nil {
		var apiErr *generation.APIError
		if errors.As(err, &apiErr) {
			// A 403 means the engine's ledger disagrees with ours; drop the
			// cached status so the next read refetches. The trial is not
			// marked used locally on denial.
			if apiErr.Status == fiber.StatusForbidden && useTrial {
				ledger.Invalidate(userCtx.UserID)
			}
			return c.Status(apiErr.Status).JSON(fiber.Map{"error": "engine_rejected", "message": apiErr.Detail})
		}
		log.Errorf("[Generate] engine call failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "engine_unavailable", "message": "Generation backend is unavailable"})
	}

	if useTrial {
		if err := ledger.MarkUsed(userCtx.UserID); err != nil {
			log.Errorf("[Generate] trial consumption record failed for user %d: %v", userCtx.UserID, err)
		}
	}

	genReq := &models.GenerationRequest{
		UserID:           userCtx.UserID,
		SourceText:       req.Text,
		Tone:             tone,
		Language:         language,
		UsedTrial:        useTrial,
		CreditsRemaining: resp.CreditsRemaining,
	}
	if len(resp.Hashtags) > 0 {
		if raw, err := json.Marshal(resp.Hashtags); err == nil {
			genReq.HashtagsJSON = string(raw)
		}
	}
	if len(resp.AISuggestions) > 0 {
		if raw, err := json.Marshal(resp.AISuggestions); err == nil {
			genReq.SuggestionsJSON = string(raw)
		}
	}
	for _, item := range resp.Items {
		genReq.Items = append(genReq.Items, models.GeneratedContent{
			UserID:        userCtx.UserID,
			Format:        item.Format,
			VariantNumber: item.VariantNumber,
			Content:       item.Content,
		})
	}

	contentRepo := repository.GetGlobalFactory().GetContentRepository()
	if err := contentRepo.CreateRequest(genReq); err != nil {
		log.Errorf("[Generate] persist failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to store generation"})
	}

	items := make([]composer.Item, 0, len(genReq.Items))
	for _, it := range genReq.Items {
		items = append(items, composer.Item{
			ID:            it.UUID,
			Format:        it.Format,
			VariantNumber: it.VariantNumber,
			Content:       it.Content,
			CreatedAt:     it.CreatedAt,
		})
	}

	out := fiber.Map{
		"request_id":        genReq.UUID,
		"groups":            composer.Compose(items),
		"used_trial":        useTrial,
		"credits_remaining": resp.CreditsRemaining,
	}
	if wantHashtags {
		out["hashtags"] = resp.Hashtags
	}
	if wantSuggestions {
		out["ai_suggestions"] = resp.AISuggestions
	}

	return c.JSON(out)
}
