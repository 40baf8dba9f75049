package webhooks

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
)

// SetupWebhookRoutes sets up the payment gateway callback route. No auth
// middleware: the gateway authenticates with its shared secret header.
func SetupWebhookRoutes(app *fiber.App) {
	webhooksAPI := app.Group("/api/webhooks")

	webhooksAPI.Post("/gateway", func(c *fiber.Ctx) error {
		return GatewayWebhookAPI(c, config.GetDB())
	})
}
