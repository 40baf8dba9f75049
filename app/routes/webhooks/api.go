package webhooks

import (
	"crypto/subtle"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// GatewayWebhookAPI receives the gateway's settlement callback. Replays of a
// terminal outcome return 200 without changing anything; unknown transaction
// ids and amount mismatches are stored for manual review and rejected.
func GatewayWebhookAPI(c *fiber.Ctx, db *sql.DB) error {
	secret := config.AppConfig.WebhookSecret
	if secret == "" || subtle.ConstantTimeCompare(
		[]byte(c.Get("X-Webhook-Secret")), []byte(secret)) != 1 {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid webhook secret"})
	}

	var hook services.GatewayWebhook
	if err := c.BodyParser(&hook); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid payload"})
	}
	if err := models.Validate(hook); err != nil {
		return err
	}

	payment, err := services.ReconcileWebhook(c.Context(), db, hook, c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payment": payment})
}
