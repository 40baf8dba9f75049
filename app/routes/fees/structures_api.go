package fees

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// StructureItemRequest is one charged line in a structure payload.
type StructureItemRequest struct {
	CategoryID string          `json:"category_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Cadence    string          `json:"cadence" validate:"required,oneof=one_time monthly quarterly annual"`
}

// StructureRequest creates a fee structure with its items.
type StructureRequest struct {
	AcademicYearID     string                 `json:"academic_year_id" validate:"required,uuid"`
	ClassID            string                 `json:"class_id" validate:"required,uuid"`
	StudentCategory    string                 `json:"student_category" validate:"required,oneof=general scholarship staff_ward govt_scheme"`
	InstallmentCount   int                    `json:"installment_count" validate:"required,gt=0"`
	GracePeriodDays    int                    `json:"grace_period_days" validate:"gte=0"`
	LateFeeAmount      *decimal.Decimal       `json:"late_fee_amount,omitempty"`
	LateFeePercentage  *decimal.Decimal       `json:"late_fee_percentage,omitempty"`
	StartDueDate       models.CustomTime      `json:"start_due_date" validate:"required"`
	InstallmentGapDays int                    `json:"installment_gap_days" validate:"gt=0"`
	Items              []StructureItemRequest `json:"items" validate:"required,min=1,dive"`
}

func itemsFromRequest(reqs []StructureItemRequest) ([]*models.FeeItem, error) {
	items := make([]*models.FeeItem, 0, len(reqs))
	for _, r := range reqs {
		if !r.Amount.IsPositive() {
			return nil, models.NewValidationError("item amounts must be positive")
		}
		items = append(items, &models.FeeItem{
			CategoryID: r.CategoryID,
			Amount:     models.Round2(r.Amount),
			Cadence:    models.Cadence(r.Cadence),
		})
	}
	return items, nil
}

// GetFeeStructuresAPI lists structures, filtered by academic year when given
func GetFeeStructuresAPI(c *fiber.Ctx, db *sql.DB) error {
	structures, err := database.GetAllFeeStructures(db, c.Query("academic_year_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"structures": structures})
}

// GetFeeStructureAPI returns one structure with items and its gross total
func GetFeeStructureAPI(c *fiber.Ctx, db *sql.DB) error {
	s, err := database.GetFeeStructureByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Structure not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"structure": s, "gross_total": s.GrossTotal()})
}

// CreateFeeStructureAPI creates a structure and its items
func CreateFeeStructureAPI(c *fiber.Ctx, db *sql.DB) error {
	var req StructureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}
	if req.LateFeeAmount != nil && req.LateFeeAmount.IsNegative() {
		return models.NewValidationError("late_fee_amount cannot be negative")
	}
	if req.LateFeePercentage != nil && req.LateFeePercentage.IsNegative() {
		return models.NewValidationError("late_fee_percentage cannot be negative")
	}

	items, err := itemsFromRequest(req.Items)
	if err != nil {
		return err
	}

	s := &models.FeeStructure{
		AcademicYearID:     req.AcademicYearID,
		ClassID:            req.ClassID,
		StudentCategory:    models.StudentCategory(req.StudentCategory),
		InstallmentCount:   req.InstallmentCount,
		GracePeriodDays:    req.GracePeriodDays,
		LateFeeAmount:      req.LateFeeAmount,
		LateFeePercentage:  req.LateFeePercentage,
		StartDueDate:       req.StartDueDate,
		InstallmentGapDays: req.InstallmentGapDays,
		Items:              items,
	}
	if err := database.CreateFeeStructure(db, s); err != nil {
		if database.IsUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{
				"error": "A structure already exists for this year, class and student category"})
		}
		return err
	}
	return c.Status(201).JSON(fiber.Map{"structure": s})
}

// UpdateFeeStructureAPI amends a structure's billing policy (installments,
// grace period, late fee, dates). Locked once any student has been assigned.
func UpdateFeeStructureAPI(c *fiber.Ctx, db *sql.DB) error {
	type PolicyRequest struct {
		InstallmentCount   int               `json:"installment_count" validate:"required,gt=0"`
		GracePeriodDays    int               `json:"grace_period_days" validate:"gte=0"`
		LateFeeAmount      *decimal.Decimal  `json:"late_fee_amount,omitempty"`
		LateFeePercentage  *decimal.Decimal  `json:"late_fee_percentage,omitempty"`
		StartDueDate       models.CustomTime `json:"start_due_date" validate:"required"`
		InstallmentGapDays int               `json:"installment_gap_days" validate:"gt=0"`
	}

	var req PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}
	if req.LateFeeAmount != nil && req.LateFeeAmount.IsNegative() {
		return models.NewValidationError("late_fee_amount cannot be negative")
	}
	if req.LateFeePercentage != nil && req.LateFeePercentage.IsNegative() {
		return models.NewValidationError("late_fee_percentage cannot be negative")
	}

	s, err := database.GetFeeStructureByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Structure not found"})
		}
		return err
	}

	locked, err := database.StructureHasAssignments(db, s.ID)
	if err != nil {
		return err
	}
	if locked {
		return models.ErrStructureLocked
	}

	s.InstallmentCount = req.InstallmentCount
	s.GracePeriodDays = req.GracePeriodDays
	s.LateFeeAmount = req.LateFeeAmount
	s.LateFeePercentage = req.LateFeePercentage
	s.StartDueDate = req.StartDueDate
	s.InstallmentGapDays = req.InstallmentGapDays
	if err := database.UpdateFeeStructure(db, s); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"structure": s})
}

// ReplaceFeeStructureItemsAPI swaps a structure's item set. Locked once any
// student has been assigned; the school creates a fresh structure instead.
func ReplaceFeeStructureItemsAPI(c *fiber.Ctx, db *sql.DB) error {
	type ItemsRequest struct {
		Items []StructureItemRequest `json:"items" validate:"required,min=1,dive"`
	}

	var req ItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}

	structureID := c.Params("id")
	if _, err := database.GetFeeStructureByID(db, structureID); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Structure not found"})
		}
		return err
	}

	locked, err := database.StructureHasAssignments(db, structureID)
	if err != nil {
		return err
	}
	if locked {
		return models.ErrStructureLocked
	}

	items, err := itemsFromRequest(req.Items)
	if err != nil {
		return err
	}
	if err := database.ReplaceFeeStructureItems(db, structureID, items); err != nil {
		return err
	}

	s, err := database.GetFeeStructureByID(db, structureID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"structure": s, "gross_total": s.GrossTotal()})
}
