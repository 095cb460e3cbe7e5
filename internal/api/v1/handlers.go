package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/postwiselab/Postwise/app/controllers"
	"github.com/postwiselab/Postwise/internal/pkg/middleware"
)

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface lists the public key-authenticated API surface.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error
	GetUserProfile(c *fiber.Ctx) error
	PostGenerate(c *fiber.Ctx) error
	GetHistory(c *fiber.Ctx) error
	GetHistoryItem(c *fiber.Ctx) error
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account information for the authenticated user (API key).
// Security is enforced via API key middleware attached in RegisterHandlers.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// PostGenerate runs one generation for API key clients. Plan enforcement and
// trial handling are identical to the dashboard flow.
func (s *APIServer) PostGenerate(c *fiber.Ctx) error {
	return controllers.HandleGenerate(c)
}

// GetHistory lists the caller's past generation requests.
func (s *APIServer) GetHistory(c *fiber.Ctx) error {
	return controllers.HandleHistoryList(c)
}

// GetHistoryItem returns one generation request with composed groups.
func (s *APIServer) GetHistoryItem(c *fiber.Ctx) error {
	return controllers.HandleHistoryDetail(c)
}

// RegisterHandlers wires the v1 routes. Everything except ping requires a
// valid API key; the key middleware also loads the user context.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)

	protected := router.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/user/profile", si.GetUserProfile)
	protected.Post("/generate", si.PostGenerate)
	protected.Get("/history", si.GetHistory)
	protected.Get("/history/:uuid", si.GetHistoryItem)
}
