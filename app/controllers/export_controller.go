package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/export"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/metrics/counter"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

const exportMaxRequests = 500

// HandleBulkExport bundles the user's generation history into object storage
// and returns a time-limited download link. Exports ship real data, so the
// gate treats them as mutations: preview never exports.
func HandleBulkExport(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	cfg, err := export.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "export_unavailable", "message": "Export storage is not configured"})
	}

	gate := gateFor(c, entitlements.FeatureBulkExport)

	var result *export.Result
	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		client, err := export.NewClient(cfg)
		if err != nil {
			return err
		}

		contentRepo := repository.GetGlobalFactory().GetContentRepository()
		requests, err := contentRepo.ListRequestsByUser(userCtx.UserID, 0, exportMaxRequests)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			return errNothingToExport
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err = export.NewExporter(client, cfg).Export(ctx, userCtx.UserID, requests)
		if err != nil {
			return err
		}

		for _, req := range requests {
			if cerr := counter.AddRequestExport(req.ID); cerr != nil {
				log.Warnf("[Export] Failed to record export for request %s: %v", req.UUID, cerr)
				break
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, featuregate.ErrPreviewMutation):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "preview_mutation", "message": err.Error(), "gate": gateEnvelope(gate)})
		case errors.Is(err, featuregate.ErrFeatureLocked):
			return respondLocked(c, gate)
		case errors.Is(err, errNothingToExport):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "nothing_to_export", "message": "No generations to export"})
		default:
			log.Errorf("[Export] bulk export failed for user %d: %v", userCtx.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Export failed"})
		}
	}

	return c.JSON(fiber.Map{
		"ok":     true,
		"export": result,
	})
}

var errNothingToExport = errors.New("no generation requests to export")
