package defaulters

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// SetupDefaulterRoutes sets up the defaulter and sweep routes
func SetupDefaulterRoutes(app *fiber.App) {
	defaultersAPI := app.Group("/api/defaulters")
	defaultersAPI.Use(auth.AuthMiddleware)

	defaultersAPI.Get("/", func(c *fiber.Ctx) error {
		return GetDefaultersAPI(c, config.GetDB())
	})
	defaultersAPI.Get("/student/:id", func(c *fiber.Ctx) error {
		return GetStudentDefaultersAPI(c, config.GetDB())
	})

	sweepsAPI := app.Group("/api/sweeps")
	sweepsAPI.Use(auth.AuthMiddleware)
	sweepsAPI.Use(auth.RoleMiddleware("admin", "bursar"))

	sweepsAPI.Post("/accrual", func(c *fiber.Ctx) error {
		return RunAccrualSweepAPI(c, config.GetDB())
	})
	sweepsAPI.Post("/defaulters", func(c *fiber.Ctx) error {
		return RunDefaulterSweepAPI(c, config.GetDB())
	})
}
