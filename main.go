package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/auth"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/defaulters"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/fees"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/payments"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/refunds"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/reports"
	"github.com/shyamanurag/school-management-system-sub000/app/routes/webhooks"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// errorHandler maps billing errors onto their HTTP codes and keeps every
// response body JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := models.AsFeeError(err); ok {
		return c.Status(fe.HTTPStatus()).JSON(fiber.Map{
			"success": false,
			"error":   fe.Msg,
			"code":    fe.Code,
			"kind":    fe.Kind,
		})
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code == fiber.StatusInternalServerError {
		config.Logger().Errorw("unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	cfg := config.Load()
	defer config.GetDB().Close()

	if err := database.RunMigrations(config.GetDB()); err != nil {
		config.Logger().Fatalw("failed to run migrations", "error", err)
	}

	services.StartScheduler(config.GetDB(), cfg.Policy, services.LogNotifier{})

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := config.GetDB().Ping(); err != nil {
			return c.Status(503).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth.SetupAuthRoutes(app)
	fees.SetupFeesRoutes(app)
	payments.SetupPaymentsRoutes(app)
	webhooks.SetupWebhookRoutes(app)
	refunds.SetupRefundRoutes(app)
	defaulters.SetupDefaulterRoutes(app)
	reports.SetupReportRoutes(app)

	// Catch-all for unknown routes (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	config.Logger().Infow("server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		config.Logger().Fatalw("server stopped", "error", err)
	}
}
