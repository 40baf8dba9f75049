package fees

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// SetupFeesRoutes sets up the fee catalog, assignment and installment routes
func SetupFeesRoutes(app *fiber.App) {
	categoriesAPI := app.Group("/api/fee-categories")
	categoriesAPI.Use(auth.AuthMiddleware)

	categoriesAPI.Get("/", func(c *fiber.Ctx) error {
		return GetFeeCategoriesAPI(c, config.GetDB())
	})
	categoriesAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetFeeCategoryAPI(c, config.GetDB())
	})
	categoriesAPI.Post("/", func(c *fiber.Ctx) error {
		return CreateFeeCategoryAPI(c, config.GetDB())
	})
	categoriesAPI.Put("/:id", func(c *fiber.Ctx) error {
		return UpdateFeeCategoryAPI(c, config.GetDB())
	})

	structuresAPI := app.Group("/api/fee-structures")
	structuresAPI.Use(auth.AuthMiddleware)

	structuresAPI.Get("/", func(c *fiber.Ctx) error {
		return GetFeeStructuresAPI(c, config.GetDB())
	})
	structuresAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetFeeStructureAPI(c, config.GetDB())
	})
	structuresAPI.Post("/", func(c *fiber.Ctx) error {
		return CreateFeeStructureAPI(c, config.GetDB())
	})
	structuresAPI.Put("/:id", func(c *fiber.Ctx) error {
		return UpdateFeeStructureAPI(c, config.GetDB())
	})
	structuresAPI.Put("/:id/items", func(c *fiber.Ctx) error {
		return ReplaceFeeStructureItemsAPI(c, config.GetDB())
	})

	assignmentsAPI := app.Group("/api/fee-assignments")
	assignmentsAPI.Use(auth.AuthMiddleware)

	assignmentsAPI.Post("/", func(c *fiber.Ctx) error {
		return AssignStructureAPI(c, config.GetDB())
	})
	assignmentsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetAssignmentAPI(c, config.GetDB())
	})
	assignmentsAPI.Patch("/:id/discounts", func(c *fiber.Ctx) error {
		return AdjustDiscountsAPI(c, config.GetDB())
	})
	assignmentsAPI.Get("/:id/installments", func(c *fiber.Ctx) error {
		return GetAssignmentInstallmentsAPI(c, config.GetDB())
	})
	assignmentsAPI.Post("/:id/installments", func(c *fiber.Ctx) error {
		return GenerateInstallmentsAPI(c, config.GetDB())
	})

	installmentsAPI := app.Group("/api/installments")
	installmentsAPI.Use(auth.AuthMiddleware)

	installmentsAPI.Get("/:id", func(c *fiber.Ctx) error {
		return GetInstallmentAPI(c, config.GetDB())
	})
	installmentsAPI.Post("/:id/accrue", func(c *fiber.Ctx) error {
		return AccrueInstallmentAPI(c, config.GetDB())
	})
	installmentsAPI.Post("/:id/waive-late-fee", auth.RoleMiddleware("admin", "bursar"),
		func(c *fiber.Ctx) error {
			return WaiveLateFeeAPI(c, config.GetDB())
		})
}
