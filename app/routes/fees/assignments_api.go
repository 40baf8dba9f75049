package fees

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// AssignRequest binds a structure to a student with its discount stack.
type AssignRequest struct {
	StudentID   string                   `json:"student_id" validate:"required,uuid"`
	StructureID string                   `json:"structure_id" validate:"required,uuid"`
	Discounts   models.DiscountOverrides `json:"discounts"`
}

// AssignStructureAPI assigns a fee structure to a student and generates the
// installment schedule in the same transaction
func AssignStructureAPI(c *fiber.Ctx, db *sql.DB) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}

	assignment, err := services.AssignStructure(c.Context(), db, req.StudentID, req.StructureID, req.Discounts)
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"assignment": assignment})
}

// GetAssignmentAPI returns one assignment
func GetAssignmentAPI(c *fiber.Ctx, db *sql.DB) error {
	assignment, err := database.GetAssignmentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Assignment not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

// AdjustDiscountsAPI re-applies the discount stack. Rejected once any
// payment has landed against the assignment's installments.
func AdjustDiscountsAPI(c *fiber.Ctx, db *sql.DB) error {
	var req models.DiscountOverrides
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	assignment, err := services.AdjustAssignmentDiscounts(c.Context(), db, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

// GenerateInstallmentsAPI builds the installment schedule for an assignment
// that lacks one. Re-posting against a generated schedule is a no-op.
func GenerateInstallmentsAPI(c *fiber.Ctx, db *sql.DB) error {
	installments, err := services.GenerateInstallments(c.Context(), db, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"installments": installments})
}

// GetAssignmentInstallmentsAPI lists the assignment's installment schedule
func GetAssignmentInstallmentsAPI(c *fiber.Ctx, db *sql.DB) error {
	installments, err := database.GetInstallmentsByAssignment(db, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"installments": installments})
}
