package fees

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// GetInstallmentAPI returns one installment with its current overdue state
func GetInstallmentAPI(c *fiber.Ctx, db *sql.DB) error {
	inst, err := database.GetInstallmentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Installment not found"})
		}
		return err
	}
	now := time.Now()
	return c.JSON(fiber.Map{
		"installment":  inst,
		"overdue":      inst.Overdue(now),
		"overdue_days": inst.OverdueDays(now),
	})
}

// AccrueInstallmentAPI forces a late-fee evaluation on one installment,
// the on-demand counterpart of the nightly sweep
func AccrueInstallmentAPI(c *fiber.Ctx, db *sql.DB) error {
	inst, changed, err := services.AccrueInstallment(c.Context(), db, c.Params("id"), time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Installment not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"installment": inst, "accrued": changed})
}

// WaiveLateFeeAPI waives an accrued late fee with an audit reason
func WaiveLateFeeAPI(c *fiber.Ctx, db *sql.DB) error {
	type WaiveRequest struct {
		Reason    string `json:"reason" validate:"required"`
		Permanent bool   `json:"permanent"`
	}

	var req WaiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}

	approverID := c.Locals("user_id").(string)
	inst, err := services.WaiveLateFee(c.Context(), db, c.Params("id"), req.Reason, approverID, req.Permanent)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Installment not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"installment": inst})
}
