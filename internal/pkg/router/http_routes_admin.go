package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postwiselab/Postwise/app/controllers"
	"github.com/postwiselab/Postwise/internal/pkg/constants"
	"github.com/postwiselab/Postwise/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group(constants.AdminAPIRoute, middleware.RequireAPISessionAuth)
	adminGroup.Get("/stats", controllers.HandleAdminStats)
}
