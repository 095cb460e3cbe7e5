package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/billing"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/env"
	"github.com/postwiselab/Postwise/internal/pkg/session"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

type checkoutRequest struct {
	PlanRef  string `json:"plan_ref"`
	Interval string `json:"interval"`
}

// HandleBillingPlans lists the plan catalog with each plan's allowances.
func HandleBillingPlans(c *fiber.Ctx) error {
	plans := make([]fiber.Map, 0, len(entitlements.Plans))
	for _, plan := range entitlements.Plans {
		ent := entitlements.EntitlementFor(plan)
		features := make([]string, 0, len(ent.Features))
		for _, f := range entitlements.Features {
			if ent.Features[f] {
				features = append(features, string(f))
			}
		}
		plans = append(plans, fiber.Map{
			"plan":            string(plan),
			"rank":            entitlements.PlanRank(plan),
			"allowed_tones":   ent.AllowedTones,
			"allowed_formats": ent.AllowedFormats,
			"max_variants":    ent.MaxVariants,
			"features":        features,
		})
	}

	return c.JSON(fiber.Map{"plans": plans})
}

// HandleBillingCheckout opens a payment session for a plan upgrade.
func HandleBillingCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if strings.TrimSpace(req.PlanRef) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "plan_ref is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	client := billing.NewCheckoutClientFromEnv()
	sess, err := client.CreateCheckoutSession(ctx, userCtx.UserID, req.PlanRef, req.Interval)
	if err != nil {
		log.Errorf("[Billing] checkout session failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout_failed", "message": "Could not open a payment session"})
	}

	return c.JSON(fiber.Map{
		"publishable_key": sess.PublishableKey,
		"client_secret":   sess.ClientSecret,
	})
}

// HandleBillingWebhook ingests provider webhooks: verify the signature, dedupe
// by provider event id, then sync subscription state into the local plan.
func HandleBillingWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Signature"))
	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")

	eventID, eventType, err := billing.ParseWebhookEnvelope(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signatureValid := billing.VerifyWebhookSignature(rawBody, signature, secret, time.Now())
	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	switch {
	case billing.IsCheckoutCompletedEvent(eventType):
		return handleCheckoutCompleted(c, ctx, svc, stored.ID, rawBody)
	case billing.IsSubscriptionEvent(eventType):
		return handleSubscriptionEvent(c, ctx, svc, stored.ID, rawBody)
	default:
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
}

func handleCheckoutCompleted(c *fiber.Ctx, ctx context.Context, svc *billing.Service, webhookID uint, rawBody []byte) error {
	ev, err := billing.ParseCheckoutCompletedEvent(rawBody)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, webhookID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	userID, ok := billing.UserIDFromClientReference(ev.ClientReferenceID)
	if !ok {
		_ = svc.MarkWebhookProcessed(ctx, webhookID, errors.New("checkout without local user reference"))
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	_, linkErr := svc.UpsertBillingAccount(ctx, userID, models.BillingProviderStripe, ev.CustomerID, ev.CustomerEmail, "", "", nil)
	_ = svc.MarkWebhookProcessed(ctx, webhookID, linkErr)
	if linkErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_link_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func handleSubscriptionEvent(c *fiber.Ctx, ctx context.Context, svc *billing.Service, webhookID uint, rawBody []byte) error {
	ev, err := billing.ParseSubscriptionEvent(rawBody)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, webhookID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	account, err := svc.GetBillingAccountByProviderAccountID(ctx, models.BillingProviderStripe, ev.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = svc.MarkWebhookProcessed(ctx, webhookID, errors.New("no linked local account for provider customer"))
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = svc.MarkWebhookProcessed(ctx, webhookID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_lookup_failed"})
	}

	_, _, syncErr := svc.SyncSubscription(ctx, billing.NormalizedSubscription{
		UserID:                 account.UserID,
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: ev.SubscriptionID,
		ProviderPlanRef:        ev.PlanRef,
		BillingInterval:        ev.Interval,
		Status:                 ev.Status,
		CurrentPeriodStart:     ev.CurrentPeriodStart,
		CurrentPeriodEnd:       ev.CurrentPeriodEnd,
		CancelAtPeriodEnd:      ev.CancelAtPeriodEnd,
		RawPayloadJSON:         string(rawBody),
	})
	_ = svc.MarkWebhookProcessed(ctx, webhookID, syncErr)
	if syncErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_sync_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// HandleBillingResync recomputes the effective plan from stored subscriptions.
func HandleBillingResync(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	effectivePlan, err := svc.ReconcileUserPlan(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "resync_failed", "message": "Plan resync failed"})
	}

	_ = session.SetSessionValue(c, "user_plan", effectivePlan)

	return c.JSON(fiber.Map{"ok": true, "plan": effectivePlan})
}
