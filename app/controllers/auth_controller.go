package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/app/repository"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/env"
	"github.com/postwiselab/Postwise/internal/pkg/hcaptcha"
	"github.com/postwiselab/Postwise/internal/pkg/mail"
	"github.com/postwiselab/Postwise/internal/pkg/session"
	"github.com/postwiselab/Postwise/internal/pkg/utils"
)

type registerRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=150"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleAuthRegister creates an inactive account and sends the activation mail.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	// Captcha is enforced only when configured, so local development works
	// without a site key.
	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		valid, err := hcaptcha.Verify(req.CaptchaToken)
		if err != nil || !valid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_failed", "message": "Captcha validation failed. Please try again."})
		}
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_user", "message": err.Error()})
	}

	if err := user.GenerateActivationToken(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to prepare activation"})
	}

	user.AvatarURL = utils.GetGravatarURL(user.Email, 200)

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(user.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email_taken", "message": "An account with this email already exists"})
	}

	if err := repo.Create(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create account"})
	}

	if err := mail.SendActivationMail(user.Email, user.Name, user.ActivationToken); err != nil {
		// Account exists; the activation mail can be re-requested.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "activation_mail_sent": false})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "activation_mail_sent": true})
}

// HandleAuthActivate activates an account via the emailed token.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing activation token"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Invalid activation token"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Activation failed"})
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Activation failed"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleAuthLogin verifies credentials and opens a session.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	// A single opaque message for unknown email and wrong password.
	invalid := fiber.Map{"error": "invalid_credentials", "message": "Email or password is incorrect"}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(invalid)
	}

	if !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(invalid)
	}

	if user.Status != models.STATUS_ACTIVE {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_inactive", "message": "Account is not activated"})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session unavailable"})
	}

	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Session save failed"})
	}

	db := database.GetDB()
	if us, err := models.GetOrCreateUserSettings(db, user.ID); err == nil && us != nil && us.Plan != "" {
		_ = session.SetSessionValue(c, "user_plan", us.Plan)
	} else {
		_ = session.SetSessionValue(c, "user_plan", "free")
	}

	now := time.Now()
	user.LastLoginAt = &now
	ipv4, ipv6 := GetClientIP(c)
	user.IPv4 = ipv4
	user.IPv6 = ipv6
	_ = repo.Update(user)

	return c.JSON(fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"is_admin": user.Role == models.ROLE_ADMIN,
		},
	})
}

// HandleAuthLogout destroys the current session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	c.Locals(FROM_PROTECTED, false)

	return c.JSON(fiber.Map{"ok": true})
}
