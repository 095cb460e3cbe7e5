package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/postwiselab/Postwise/internal/api/v1"
	"github.com/postwiselab/Postwise/internal/pkg/constants"
)

// ApiRouter installs the public key-authenticated API. It lives under its own
// prefix so the session-cookie dashboard API and the key API never share a
// route table entry.
type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.PublicAPIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Postwise public API",
		})
	})

	// API v1 routes
	v1 := api.Group(constants.PublicAPIV1Route)
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
