package refunds

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// SetupRefundRoutes sets up the refund workflow routes. Approval and
// rejection are restricted to roles that can authorize money leaving.
func SetupRefundRoutes(app *fiber.App) {
	refundsAPI := app.Group("/api/refunds")
	refundsAPI.Use(auth.AuthMiddleware)

	refundsAPI.Post("/", func(c *fiber.Ctx) error {
		return RequestRefundAPI(c, config.GetDB())
	})
	refundsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetRefundAPI(c, config.GetDB())
	})

	approvers := auth.RoleMiddleware("admin", "bursar")
	refundsAPI.Post("/:id/approve", approvers, func(c *fiber.Ctx) error {
		return ApproveRefundAPI(c, config.GetDB())
	})
	refundsAPI.Post("/:id/reject", approvers, func(c *fiber.Ctx) error {
		return RejectRefundAPI(c, config.GetDB())
	})
	refundsAPI.Post("/:id/process", approvers, func(c *fiber.Ctx) error {
		return ProcessRefundAPI(c, config.GetDB())
	})
	refundsAPI.Post("/:id/complete", approvers, func(c *fiber.Ctx) error {
		return CompleteRefundAPI(c, config.GetDB())
	})
}
