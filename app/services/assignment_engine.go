package services

import (
	"context"
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

// The discount stack is an ordered pipeline of pure amount -> amount stages:
// percentage discount, flat discount, scholarship, government waiver, in that
// fixed order. A stage that would drive the running amount negative rejects
// the whole assignment; nothing is ever clamped.

type discountStage struct {
	name  string
	apply func(running decimal.Decimal) decimal.Decimal
}

func discountPipeline(gross decimal.Decimal, o models.DiscountOverrides) []discountStage {
	return []discountStage{
		{"discount_percentage", func(r decimal.Decimal) decimal.Decimal {
			return r.Sub(models.Percent(gross, o.DiscountPercentage))
		}},
		{"discount_amount", func(r decimal.Decimal) decimal.Decimal {
			return r.Sub(models.Round2(o.DiscountAmount))
		}},
		{"scholarship_percentage", func(r decimal.Decimal) decimal.Decimal {
			return r.Sub(models.Percent(gross, o.ScholarshipPercentage))
		}},
		{"scholarship_amount", func(r decimal.Decimal) decimal.Decimal {
			return r.Sub(models.Round2(o.ScholarshipAmount))
		}},
		{"government_waiver", func(r decimal.Decimal) decimal.Decimal {
			return r.Sub(models.Round2(o.GovernmentWaiver))
		}},
	}
}

// ComputeNetPayable runs the discount pipeline over the gross amount.
// Percentages are computed on the gross so the result does not depend on
// intermediate rounding. Returns ErrInvalidDiscount if any stage goes
// negative.
func ComputeNetPayable(gross decimal.Decimal, o models.DiscountOverrides) (decimal.Decimal, error) {
	if o.DiscountPercentage.IsNegative() || o.DiscountAmount.IsNegative() ||
		o.ScholarshipPercentage.IsNegative() || o.ScholarshipAmount.IsNegative() ||
		o.GovernmentWaiver.IsNegative() {
		return decimal.Zero, models.NewValidationError("discount values must not be negative")
	}

	running := models.Round2(gross)
	for _, stage := range discountPipeline(gross, o) {
		running = stage.apply(running)
		if running.IsNegative() {
			config.Logger().Warnw("discount stack rejected",
				"stage", stage.name, "gross", gross, "running", running)
			return decimal.Zero, models.ErrInvalidDiscount
		}
	}
	return models.Round2(running), nil
}

// AssignStructure binds a fee structure to a student for the structure's
// academic year, applies the discount stack and generates the installment
// schedule, all in one serializable transaction. An assignment never exists
// without its schedule.
func AssignStructure(ctx context.Context, db *sql.DB, studentID, structureID string, o models.DiscountOverrides) (*models.StudentFeeAssignment, error) {
	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	student, err := database.GetStudentByID(tx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("student %s not found", studentID)
		}
		return nil, err
	}

	structure, err := database.GetFeeStructureByID(tx, structureID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("fee structure %s not found", structureID)
		}
		return nil, err
	}

	year, err := database.GetAcademicYearByID(tx, structure.AcademicYearID)
	if err != nil {
		return nil, err
	}

	exists, err := database.AssignmentExists(tx, student.ID, structure.AcademicYearID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrDuplicateAssignment
	}

	gross := structure.GrossTotal()
	net, err := ComputeNetPayable(gross, o)
	if err != nil {
		return nil, err
	}

	assignment := &models.StudentFeeAssignment{
		StudentID:             student.ID,
		StructureID:           structure.ID,
		AcademicYearID:        structure.AcademicYearID,
		DiscountPercentage:    o.DiscountPercentage,
		DiscountAmount:        o.DiscountAmount,
		ScholarshipPercentage: o.ScholarshipPercentage,
		ScholarshipAmount:     o.ScholarshipAmount,
		GovernmentWaiver:      o.GovernmentWaiver,
		GrossAmount:           gross,
		NetPayable:            net,
	}
	if err := database.InsertAssignment(tx, assignment); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.ErrDuplicateAssignment
		}
		return nil, err
	}

	schedule, err := BuildSchedule(assignment, structure, year.EndDate.Time)
	if err != nil {
		return nil, err
	}
	if err := database.InsertInstallments(tx, schedule); err != nil {
		return nil, err
	}
	assignment.Installments = schedule

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	config.Logger().Infow("fee structure assigned",
		"student_id", student.ID, "structure_id", structure.ID,
		"gross", gross, "net_payable", net, "installments", len(schedule))
	return assignment, nil
}

// AdjustAssignmentDiscounts rewrites the discount stack on an existing
// assignment and regenerates installment amounts. Only legal before the
// first successful payment.
func AdjustAssignmentDiscounts(ctx context.Context, db *sql.DB, assignmentID string, o models.DiscountOverrides) (*models.StudentFeeAssignment, error) {
	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	assignment, err := database.GetAssignmentByID(tx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("assignment %s not found", assignmentID)
		}
		return nil, err
	}

	paid, err := database.AssignmentHasPayments(tx, assignment.ID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, &models.FeeError{Kind: models.KindConflict, Code: "AssignmentLocked",
			Msg: "discounts cannot change after the first payment"}
	}

	net, err := ComputeNetPayable(assignment.GrossAmount, o)
	if err != nil {
		return nil, err
	}

	assignment.DiscountPercentage = o.DiscountPercentage
	assignment.DiscountAmount = o.DiscountAmount
	assignment.ScholarshipPercentage = o.ScholarshipPercentage
	assignment.ScholarshipAmount = o.ScholarshipAmount
	assignment.GovernmentWaiver = o.GovernmentWaiver
	assignment.NetPayable = net
	if err := database.UpdateAssignmentDiscounts(tx, assignment); err != nil {
		return nil, err
	}

	// Rewrite the unpaid schedule so installment sums still equal net_payable.
	installments, err := database.GetInstallmentsByAssignment(tx, assignment.ID)
	if err != nil {
		return nil, err
	}
	nets := Apportion(net, len(installments))
	grosses := Apportion(assignment.GrossAmount, len(installments))
	for idx, inst := range installments {
		inst.GrossAmount = grosses[idx]
		inst.NetAmount = nets[idx]
		inst.DiscountShare = grosses[idx].Sub(nets[idx])
		inst.BalanceAmount = inst.ComputeBalance()
		if err := inst.CheckBalanceInvariant(); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(
			`UPDATE fee_installments SET gross_amount = $1, discount_share = $2, net_amount = $3,
				balance_amount = $4, updated_at = NOW() WHERE id = $5`,
			inst.GrossAmount, inst.DiscountShare, inst.NetAmount, inst.BalanceAmount, inst.ID,
		); err != nil {
			return nil, err
		}
	}
	assignment.Installments = installments

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return assignment, nil
}
