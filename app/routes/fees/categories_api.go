package fees

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// CategoryRequest is the create/update payload for a fee category.
type CategoryRequest struct {
	Name             string          `json:"name" validate:"required"`
	IsRefundable     bool            `json:"is_refundable"`
	RefundPercentage decimal.Decimal `json:"refund_percentage"`
	TaxPercentage    decimal.Decimal `json:"tax_percentage"`
}

func (r CategoryRequest) validateRanges() error {
	hundred := decimal.NewFromInt(100)
	if r.RefundPercentage.IsNegative() || r.RefundPercentage.GreaterThan(hundred) {
		return models.NewValidationError("refund_percentage must be between 0 and 100")
	}
	if r.TaxPercentage.IsNegative() || r.TaxPercentage.GreaterThan(hundred) {
		return models.NewValidationError("tax_percentage must be between 0 and 100")
	}
	if r.IsRefundable && r.RefundPercentage.IsZero() {
		return models.NewValidationError("refundable categories need a refund_percentage")
	}
	return nil
}

// GetFeeCategoriesAPI returns all active catalog categories
func GetFeeCategoriesAPI(c *fiber.Ctx, db *sql.DB) error {
	cats, err := database.GetAllFeeCategories(db)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GetFeeCategoryAPI returns one category by id
func GetFeeCategoryAPI(c *fiber.Ctx, db *sql.DB) error {
	cat, err := database.GetFeeCategoryByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Category not found"})
		}
		return err
	}
	return c.JSON(fiber.Map{"category": cat})
}

// CreateFeeCategoryAPI adds a new category to the catalog
func CreateFeeCategoryAPI(c *fiber.Ctx, db *sql.DB) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}
	if err := req.validateRanges(); err != nil {
		return err
	}

	cat := &models.FeeCategory{
		Name:             req.Name,
		IsRefundable:     req.IsRefundable,
		RefundPercentage: req.RefundPercentage,
		TaxPercentage:    req.TaxPercentage,
		IsActive:         true,
	}
	if err := database.CreateFeeCategory(db, cat); err != nil {
		return err
	}
	return c.Status(201).JSON(fiber.Map{"category": cat})
}

// UpdateFeeCategoryAPI edits a category. Once the category backs live
// assignments the edit lands as a new version; the old row is retired, and
// existing assignments keep pointing at it.
func UpdateFeeCategoryAPI(c *fiber.Ctx, db *sql.DB) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := models.Validate(req); err != nil {
		return err
	}
	if err := req.validateRanges(); err != nil {
		return err
	}

	cat, err := database.GetFeeCategoryByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Category not found"})
		}
		return err
	}

	live, err := database.CategoryHasLiveAssignments(db, cat.ID)
	if err != nil {
		return err
	}

	updated := &models.FeeCategory{
		Name:             req.Name,
		IsRefundable:     req.IsRefundable,
		RefundPercentage: req.RefundPercentage,
		TaxPercentage:    req.TaxPercentage,
		IsActive:         true,
	}

	if live {
		if err := database.CreateFeeCategoryVersion(db, cat, updated); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"category": updated, "versioned": true})
	}

	cat.Name = req.Name
	cat.IsRefundable = req.IsRefundable
	cat.RefundPercentage = req.RefundPercentage
	cat.TaxPercentage = req.TaxPercentage
	if err := database.UpdateFeeCategory(db, cat); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"category": cat, "versioned": false})
}
