package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/mail"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

const maxTeamSeats = 10

var teamValidator = validator.New()

type teamInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=editor viewer"`
}

// HandleTeamList returns the account's team seats. Preview serves demo seats.
func HandleTeamList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	gate := gateFor(c, entitlements.FeatureTeam)

	var members []models.TeamMember
	err := gate.Dispatch(featuregate.ActionRead, func() error {
		if gate.State() == featuregate.StatePreview {
			members = featuregate.DemoTeam()
			return nil
		}
		var err error
		members, err = repository.GetGlobalFactory().GetTeamRepository().ListByOwner(userCtx.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, featuregate.ErrFeatureLocked) {
			return respondLocked(c, gate)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load team"})
	}

	return c.JSON(fiber.Map{
		"members": members,
		"gate":    gateEnvelope(gate),
	})
}

// HandleTeamInvite adds a pending seat and mails the invitee.
func HandleTeamInvite(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	var req teamInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}
	if err := teamValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}
	if req.Role == "" {
		req.Role = models.TeamRoleViewer
	}

	teamRepo := repository.GetGlobalFactory().GetTeamRepository()
	count, err := teamRepo.CountByOwner(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load team"})
	}
	if count >= maxTeamSeats {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "seat_limit_reached", "message": "Your team has reached the seat limit"})
	}

	member := &models.TeamMember{
		OwnerUserID: userCtx.UserID,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Role:        req.Role,
		Status:      models.TeamInvitePending,
	}

	gate := gateFor(c, entitlements.FeatureTeam)
	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		return teamRepo.Invite(member)
	})
	if err != nil {
		switch {
		case errors.Is(err, featuregate.ErrPreviewMutation):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "preview_mutation", "message": err.Error(), "gate": gateEnvelope(gate)})
		case errors.Is(err, featuregate.ErrFeatureLocked):
			return respondLocked(c, gate)
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create invite"})
		}
	}

	if err := mail.SendTeamInviteMail(member.Email, userCtx.Username, member.Role); err != nil {
		log.Warnf("[Team] invite mail to %s failed: %v", member.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "member": member})
}

// HandleTeamRemove removes a seat from the account's team.
func HandleTeamRemove(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Login required"})
	}

	memberID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || memberID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid member id"})
	}

	teamRepo := repository.GetGlobalFactory().GetTeamRepository()
	member, err := teamRepo.GetByID(uint(memberID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Team member not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load team member"})
	}
	if member.OwnerUserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Team member not found"})
	}
	if member.Role == models.TeamRoleOwner {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cannot_remove_owner", "message": "The account owner seat cannot be removed"})
	}

	gate := gateFor(c, entitlements.FeatureTeam)
	err = gate.Dispatch(featuregate.ActionMutate, func() error {
		return teamRepo.Remove(member.ID)
	})
	if err != nil {
		switch {
		case errors.Is(err, featuregate.ErrPreviewMutation):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "preview_mutation", "message": err.Error(), "gate": gateEnvelope(gate)})
		case errors.Is(err, featuregate.ErrFeatureLocked):
			return respondLocked(c, gate)
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to remove team member"})
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
