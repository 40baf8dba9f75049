package refunds

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// RequestRefundAPI opens a refund request against a settled payment
func RequestRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	type RefundRequest struct {
		PaymentID string          `json:"payment_id" validate:"required,uuid"`
		Amount    decimal.Decimal `json:"amount" validate:"required"`
		Reason    string          `json:"reason" validate:"required"`
	}

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}

	requestedBy := c.Locals("user_id").(string)
	refund, err := services.RequestRefund(c.Context(), db, req.PaymentID, req.Amount, req.Reason, requestedBy)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"refund": refund})
}

// GetRefundAPI returns one refund
func GetRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	refund, err := database.GetRefundByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Refund not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"refund": refund})
}

func ApproveRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	refund, err := services.ApproveRefund(c.Context(), db, c.Params("id"), c.Locals("user_id").(string))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"refund": refund})
}

func RejectRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	refund, err := services.RejectRefund(c.Context(), db, c.Params("id"), c.Locals("user_id").(string))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"refund": refund})
}

func ProcessRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	refund, err := services.ProcessRefund(c.Context(), db, c.Params("id"), c.Locals("user_id").(string))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"refund": refund})
}

func CompleteRefundAPI(c *fiber.Ctx, db *sql.DB) error {
	refund, err := services.CompleteRefund(c.Context(), db, c.Params("id"), c.Locals("user_id").(string))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"refund": refund})
}
