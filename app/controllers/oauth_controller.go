package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/session"
	"github.com/postwiselab/Postwise/internal/pkg/utils"
)

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Social login failed"}).Redirect("/login")
	}

	db := database.GetDB()

	// Try to find existing provider account
	var pa models.ProviderAccount
	res := db.Where("provider = ? AND provider_user_id = ?", u.Provider, u.UserID).First(&pa)

	var appUser models.User
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		// Optional email match if provided
		if u.Email != "" {
			_ = db.Where("email = ?", u.Email).First(&appUser).Error
		}
		if appUser.ID == 0 {
			// Create new user; the random placeholder password is never used
			// for login but satisfies model validation
			placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
			hash, _ := models.HashPassword(placeholder)
			email := u.Email
			if email == "" {
				// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
				email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
			}
			appUser = models.User{
				Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
				Email:     email,
				Password:  hash,
				AvatarURL: firstNonEmpty(u.AvatarURL, utils.GetGravatarURL(email, 200)),
				Status:    models.STATUS_ACTIVE,
			}
			if err := db.Create(&appUser).Error; err != nil {
				return flash.WithError(c, fiber.Map{"type": "error", "message": "Account creation failed"}).Redirect("/login")
			}
		}
		var exp *time.Time
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			exp = &t
		}
		pa = models.ProviderAccount{
			UserID:         appUser.ID,
			Provider:       u.Provider,
			ProviderUserID: u.UserID,
			AccessToken:    u.AccessToken,
			RefreshToken:   u.RefreshToken,
			ExpiresAt:      exp,
		}
		if err := db.Create(&pa).Error; err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Linking the provider account failed"}).Redirect("/login")
		}
	} else if res.Error == nil {
		// Update tokens
		pa.AccessToken = u.AccessToken
		pa.RefreshToken = u.RefreshToken
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			pa.ExpiresAt = &t
		} else {
			pa.ExpiresAt = nil
		}
		if err := db.Save(&pa).Error; err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Updating provider tokens failed"}).Redirect("/login")
		}
		// Load related user
		if err := db.First(&appUser, pa.UserID).Error; err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Linked account not found"}).Redirect("/login")
		}
	} else {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Social login failed"}).Redirect("/login")
	}

	// Create app session
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Session init failed"}).Redirect("/login")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, appUser.ID)
	sess.Set(USER_NAME, appUser.Name)
	sess.Set(USER_IS_ADMIN, appUser.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Session save failed"}).Redirect("/login")
	}

	// Cache user plan in session for entitlement checks
	if us, err := models.GetOrCreateUserSettings(db, appUser.ID); err == nil && us != nil && us.Plan != "" {
		_ = session.SetSessionValue(c, "user_plan", us.Plan)
	} else {
		_ = session.SetSessionValue(c, "user_plan", "free")
	}

	// Update last login timestamp
	_ = db.Model(&appUser).UpdateColumn("last_login_at", time.Now()).Error

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Signed in with " + u.Provider}).Redirect("/")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
