package defaulters

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/services"
)

// GetDefaultersAPI lists all open defaulter rows, most overdue first
func GetDefaultersAPI(c *fiber.Ctx, db *sql.DB) error {
	defaulters, err := database.ListOpenDefaulters(db, "")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"defaulters": defaulters})
}

// GetStudentDefaultersAPI returns a student's open defaulter rows and
// current hold state
func GetStudentDefaultersAPI(c *fiber.Ctx, db *sql.DB) error {
	defaulters, err := database.ListOpenDefaulters(db, c.Params("id"))
	if err != nil {
		return err
	}

	tcHold, examDebarred := false, false
	for _, d := range defaulters {
		tcHold = tcHold || d.TCHold
		examDebarred = examDebarred || d.ExamDebarred
	}
	return c.JSON(fiber.Map{
		"defaulters":    defaulters,
		"tc_hold":       tcHold,
		"exam_debarred": examDebarred,
	})
}

// RunAccrualSweepAPI triggers the late-fee sweep on demand, the manual
// counterpart of the nightly scheduler run
func RunAccrualSweepAPI(c *fiber.Ctx, db *sql.DB) error {
	report, err := services.RunAccrualSweep(c.Context(), db, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": report})
}

// RunDefaulterSweepAPI triggers the defaulter sweep on demand, for all
// students or one via the student_id query parameter
func RunDefaulterSweepAPI(c *fiber.Ctx, db *sql.DB) error {
	pol := config.Policy()
	notifier := services.LogNotifier{}
	now := time.Now()

	var report *services.SweepReport
	var err error
	if studentID := c.Query("student_id"); studentID != "" {
		report, err = services.SweepStudentDefaulters(c.Context(), db, pol, notifier, now, studentID)
	} else {
		report, err = services.RunDefaulterSweep(c.Context(), db, pol, notifier, now)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": report})
}
