package reports

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
)

// SetupReportRoutes sets up the reporting projections
func SetupReportRoutes(app *fiber.App) {
	reportsAPI := app.Group("/api/reports")
	reportsAPI.Use(auth.AuthMiddleware)

	reportsAPI.Get("/stats", func(c *fiber.Ctx) error {
		return GetFeeStatsAPI(c, config.GetDB())
	})
	reportsAPI.Get("/collections", func(c *fiber.Ctx) error {
		return GetCollectionSummaryAPI(c, config.GetDB())
	})
	reportsAPI.Get("/outstanding", func(c *fiber.Ctx) error {
		return GetOutstandingByClassAPI(c, config.GetDB())
	})
	reportsAPI.Get("/defaulters", func(c *fiber.Ctx) error {
		return GetDefaulterListAPI(c, config.GetDB())
	})
}
