package reports

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// GetCollectionSummaryAPI sums successful collections for a period.
// Defaults to the current month when no range is given.
func GetCollectionSummaryAPI(c *fiber.Ctx, db *sql.DB) error {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return models.NewValidationError("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return models.NewValidationError("to must be YYYY-MM-DD")
		}
		to = parsed
	}
	if !to.After(from) {
		return models.NewValidationError("to must be after from")
	}

	summary, err := database.GetCollectionSummary(db, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary})
}

// GetFeeStatsAPI returns the headline collection totals
func GetFeeStatsAPI(c *fiber.Ctx, db *sql.DB) error {
	stats, err := database.GetFeeStats(db)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}

// GetOutstandingByClassAPI groups unpaid balances by class and category
func GetOutstandingByClassAPI(c *fiber.Ctx, db *sql.DB) error {
	rows, err := database.GetOutstandingByClass(db, c.Query("academic_year_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"outstanding": rows})
}

// GetDefaulterListAPI returns the current defaulter report
func GetDefaulterListAPI(c *fiber.Ctx, db *sql.DB) error {
	rows, err := database.GetDefaulterList(db)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"defaulters": rows})
}
