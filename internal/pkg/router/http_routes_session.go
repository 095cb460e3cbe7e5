package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postwiselab/Postwise/app/controllers"
	"github.com/postwiselab/Postwise/internal/pkg/constants"
	"github.com/postwiselab/Postwise/internal/pkg/middleware"
)

// registerSessionRoutes wires the dashboard endpoints used by the logged-in
// web frontend. They authenticate via the session cookie and answer JSON.
func (h HttpRouter) registerSessionRoutes(app *fiber.App) {
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	v1 := app.Group(constants.APIV1Route, middleware.RequireAPISessionAuth)

	// Account + preferences
	v1.Get("/user/account", controllers.HandleGetUserAccount)
	v1.Put("/user/settings", controllers.HandleUpdateUserSettings)
	v1.Post("/user/api-key", controllers.HandleIssueAPIKey)
	v1.Delete("/user/api-key", controllers.HandleRevokeAPIKey)

	// Gate preview choice
	v1.Post("/features/:feature/preview", controllers.HandleActivatePreview)

	// Generation + history
	v1.Post("/generate", controllers.HandleGenerate)
	v1.Get("/history", controllers.HandleHistoryList)
	v1.Get("/history/:uuid", controllers.HandleHistoryDetail)
	v1.Delete("/history/:uuid", controllers.HandleHistoryDelete)

	// Calendar
	v1.Get("/calendar", controllers.HandleCalendarMonth)
	v1.Post("/calendar/posts", controllers.HandleSchedulePost)
	v1.Patch("/calendar/posts/:uuid", controllers.HandleUpdateScheduledPost)
	v1.Delete("/calendar/posts/:uuid", controllers.HandleDeleteScheduledPost)

	// Team
	v1.Get("/team", controllers.HandleTeamList)
	v1.Post("/team/invites", controllers.HandleTeamInvite)
	v1.Delete("/team/members/:id", controllers.HandleTeamRemove)

	// Analytics + export
	v1.Get("/analytics", controllers.HandleAnalytics)
	v1.Post("/export", controllers.HandleBulkExport)

	// Billing
	v1.Post("/billing/checkout", controllers.HandleBillingCheckout)
	v1.Post("/billing/resync", controllers.HandleBillingResync)
}
