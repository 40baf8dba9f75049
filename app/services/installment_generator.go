package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

// Apportion splits an amount into n parts that sum back exactly. Each part
// starts at floor(amount/n) in cents; the remainder cents go one each to the
// first installments in order. Deterministic and drift-free by construction.
func Apportion(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	totalCents := models.Cents(amount)
	base := totalCents / int64(n)
	remainder := totalCents - base*int64(n)

	parts := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		parts[i] = models.FromCents(cents)
	}
	return parts
}

// BuildSchedule turns a computed assignment into its installment rows.
// Due dates start at the structure's start date, step by the configured gap
// and never run past the academic year's end.
func BuildSchedule(a *models.StudentFeeAssignment, s *models.FeeStructure, yearEnd time.Time) ([]*models.FeeInstallment, error) {
	n := s.InstallmentCount
	if n <= 0 {
		return nil, models.NewValidationError("structure %s has installment_count %d", s.ID, n)
	}

	nets := Apportion(a.NetPayable, n)
	grosses := Apportion(a.GrossAmount, n)

	installments := make([]*models.FeeInstallment, 0, n)
	sum := decimal.Zero
	for i := 0; i < n; i++ {
		due := s.StartDueDate.Time.AddDate(0, 0, i*s.InstallmentGapDays)
		if !yearEnd.IsZero() && due.After(yearEnd) {
			due = yearEnd
		}
		inst := &models.FeeInstallment{
			AssignmentID:      a.ID,
			InstallmentNumber: i + 1,
			DueDate:           models.CustomTime{Time: due},
			GrossAmount:       grosses[i],
			DiscountShare:     grosses[i].Sub(nets[i]),
			NetAmount:         nets[i],
			PaidAmount:        decimal.Zero,
			BalanceAmount:     nets[i],
		}
		sum = sum.Add(inst.NetAmount)
		installments = append(installments, inst)
	}

	if !sum.Equal(a.NetPayable) {
		return nil, models.NewInvariantViolation(
			"installment sum %s != net payable %s for assignment %s", sum, a.NetPayable, a.ID)
	}
	return installments, nil
}

// GenerateInstallments builds the schedule for an assignment that somehow
// lacks one. Normal flow creates the schedule inside AssignStructure; this
// is the idempotent re-entry point, returning ErrAlreadyGenerated instead of
// duplicating rows.
func GenerateInstallments(ctx context.Context, db *sql.DB, assignmentID string) ([]*models.FeeInstallment, error) {
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

	existing, err := database.InstallmentCountForAssignment(tx, assignment.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, models.ErrAlreadyGenerated
	}

	structure, err := database.GetFeeStructureByID(tx, assignment.StructureID)
	if err != nil {
		return nil, err
	}
	year, err := database.GetAcademicYearByID(tx, assignment.AcademicYearID)
	if err != nil {
		return nil, err
	}

	schedule, err := BuildSchedule(assignment, structure, year.EndDate.Time)
	if err != nil {
		return nil, err
	}
	if err := database.InsertInstallments(tx, schedule); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	config.Logger().Infow("installments generated",
		"assignment_id", assignment.ID, "count", len(schedule))
	return schedule, nil
}
