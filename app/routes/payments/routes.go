package payments

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// SetupPaymentsRoutes sets up the payment ledger routes
func SetupPaymentsRoutes(app *fiber.App) {
	paymentsAPI := app.Group("/api/payments")
	paymentsAPI.Use(auth.AuthMiddleware)

	paymentsAPI.Post("/", func(c *fiber.Ctx) error {
		return RecordPaymentAPI(c, config.GetDB())
	})
	paymentsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetPaymentAPI(c, config.GetDB())
	})

	studentsAPI := app.Group("/api/students")
	studentsAPI.Use(auth.AuthMiddleware)

	studentsAPI.Get("/:id/payments", func(c *fiber.Ctx) error {
		return GetStudentPaymentsAPI(c, config.GetDB())
	})
	studentsAPI.Post("/:id/apply-advance", func(c *fiber.Ctx) error {
		return ApplyAdvanceAPI(c, config.GetDB())
	})
	studentsAPI.Get("/:id/statement", func(c *fiber.Ctx) error {
		return GetStudentStatementAPI(c, config.GetDB())
	})
}
