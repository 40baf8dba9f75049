package payments

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// RecordPaymentAPI records a collection action against an installment, or an
// unallocated advance when no installment is given
func RecordPaymentAPI(c *fiber.Ctx, db *sql.DB) error {
	type PaymentRequest struct {
		StudentID             string          `json:"student_id" validate:"required,uuid"`
		InstallmentID         *string         `json:"installment_id,omitempty" validate:"omitempty,uuid"`
		Amount                decimal.Decimal `json:"amount" validate:"required"`
		Method                string          `json:"method" validate:"required,oneof=cash cheque bank_transfer gateway"`
		ExternalTransactionID *string         `json:"external_transaction_id,omitempty"`
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}
	if models.PaymentMethod(req.Method) == models.MethodGateway &&
		(req.ExternalTransactionID == nil || *req.ExternalTransactionID == "") {
		return models.NewValidationError("gateway payments need an external_transaction_id")
	}

	receivedBy := c.Locals("user_id").(string)
	payment, err := services.RecordPayment(c.Context(), db, services.PaymentRequest{
		StudentID:             req.StudentID,
		InstallmentID:         req.InstallmentID,
		Amount:                req.Amount,
		Method:                models.PaymentMethod(req.Method),
		ExternalTransactionID: req.ExternalTransactionID,
		ReceivedBy:            &receivedBy,
	})
	if err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"payment": payment})
}

// GetPaymentAPI returns one payment with its refunds
func GetPaymentAPI(c *fiber.Ctx, db *sql.DB) error {
	payment, err := database.GetPaymentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Payment not found"})
		}
		return err
	}
	refunds, err := database.GetRefundsByPayment(db, payment.ID)
	if err != nil {
		return err
	}
	payment.Refunds = refunds
	return c.JSON(fiber.Map{"payment": payment})
}

// GetStudentPaymentsAPI lists a student's payments, newest first
func GetStudentPaymentsAPI(c *fiber.Ctx, db *sql.DB) error {
	paymentsList, err := database.GetPaymentsByStudent(db, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": paymentsList})
}

// ApplyAdvanceAPI drains the student's advance credit into unpaid
// installments, oldest due first
func ApplyAdvanceAPI(c *fiber.Ctx, db *sql.DB) error {
	allocations, err := services.ApplyAdvance(c.Context(), db, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"allocations": allocations})
}

// GetStudentStatementAPI assembles the student's fee position for one
// academic year: assignment, schedule, payments and totals
func GetStudentStatementAPI(c *fiber.Ctx, db *sql.DB) error {
	studentID := c.Params("id")
	academicYearID := c.Query("academic_year_id")
	if academicYearID == "" {
		return models.NewValidationError("academic_year_id query parameter is required")
	}

	assignment, err := database.GetAssignmentByStudentYear(db, studentID, academicYearID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "No fee assignment for this student and year"})
		}
		return err
	}

	installments, err := database.GetInstallmentsByAssignment(db, assignment.ID)
	if err != nil {
		return err
	}
	paymentsList, err := database.GetPaymentsByStudent(db, studentID)
	if err != nil {
		return err
	}

	totalPaid := decimal.Zero
	totalLateFees := decimal.Zero
	totalBalance := decimal.Zero
	for _, inst := range installments {
		totalPaid = totalPaid.Add(inst.PaidAmount)
		totalLateFees = totalLateFees.Add(inst.LateFeeAmount)
		totalBalance = totalBalance.Add(inst.BalanceAmount)
	}

	advance := decimal.Zero
	for _, p := range paymentsList {
		advance = advance.Add(p.AdvanceRemaining)
	}

	return c.JSON(fiber.Map{
		"assignment":   assignment,
		"installments": installments,
		"payments":     paymentsList,
		"summary": fiber.Map{
			"gross_amount":    assignment.GrossAmount,
			"net_payable":     assignment.NetPayable,
			"total_late_fees": totalLateFees,
			"total_paid":      totalPaid,
			"total_balance":   totalBalance,
			"advance_credit":  advance,
		},
	})
}
