package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/postwiselab/Postwise/app/controllers"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/health", controllers.HandleHealth)

	// Plan catalog is public for the pricing page
	app.Get("/api/v1/billing/plans", loggedInMiddleware, controllers.HandleBillingPlans)

	// Account lifecycle
	app.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	app.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)
	app.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (signature-verified in the controller)
	app.Post("/webhooks/billing", controllers.HandleBillingWebhook)
}
