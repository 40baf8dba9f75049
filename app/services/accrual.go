package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

// LateFeeFor is the single late fee rule, shared by the lazy path and the
// sweep so both produce identical results. It returns the fee the
// installment should carry as of asOf, and whether accrual applies at all.
//
// The fee accrues once the grace period after the due date has fully
// elapsed, while any of the principal (net minus paid, ignoring the late
// fee itself) is outstanding. When both a flat amount and a percentage are
// configured, the flat amount wins.
func LateFeeFor(inst *models.FeeInstallment, s *models.FeeStructure, asOf time.Time) (decimal.Decimal, bool) {
	graceEnd := inst.DueDate.Time.AddDate(0, 0, s.GracePeriodDays)
	if !asOf.After(graceEnd) {
		return decimal.Zero, false
	}
	principalDue := inst.NetAmount.Sub(inst.PaidAmount)
	if !principalDue.IsPositive() {
		return decimal.Zero, false
	}

	if s.LateFeeAmount != nil && s.LateFeeAmount.IsPositive() {
		return models.Round2(*s.LateFeeAmount), true
	}
	if s.LateFeePercentage != nil && s.LateFeePercentage.IsPositive() {
		return models.Percent(inst.NetAmount, *s.LateFeePercentage), true
	}
	return decimal.Zero, false
}

// accrueInTx applies the late fee rule to a locked installment row and
// reports whether it changed. The late_fee_locked flag makes accrual
// happen at most once; a non-permanent waiver reopens it.
func accrueInTx(tx database.DBTX, inst *models.FeeInstallment, s *models.FeeStructure, asOf time.Time) (bool, error) {
	if inst.LateFeeLocked && !inst.LateFeeWaived {
		return false, nil
	}
	if inst.LateFeeWaived && inst.WaiverPermanent {
		return false, nil
	}

	fee, due := LateFeeFor(inst, s, asOf)
	if !due {
		return false, nil
	}

	inst.LateFeeAmount = fee
	inst.LateFeeLocked = true
	inst.LateFeeWaived = false
	inst.BalanceAmount = inst.ComputeBalance()
	if err := inst.CheckBalanceInvariant(); err != nil {
		return false, err
	}
	if err := database.UpdateInstallmentAccrual(tx, inst); err != nil {
		return false, err
	}
	return true, nil
}

// AccrueInstallment is the lazy accrual path, called whenever an installment
// is read for payment or reporting. It re-reads the row inside its own
// transaction before deciding anything.
func AccrueInstallment(ctx context.Context, db *sql.DB, installmentID string, asOf time.Time) (*models.FeeInstallment, bool, error) {
	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	inst, err := database.GetInstallmentForUpdate(tx, installmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, models.NewValidationError("installment %s not found", installmentID)
		}
		return nil, false, err
	}

	assignment, err := database.GetAssignmentByID(tx, inst.AssignmentID)
	if err != nil {
		return nil, false, err
	}
	structure, err := database.GetFeeStructureByID(tx, assignment.StructureID)
	if err != nil {
		return nil, false, err
	}

	changed, err := accrueInTx(tx, inst, structure, asOf)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	if changed {
		config.Logger().Infow("late fee accrued",
			"installment_id", inst.ID, "late_fee", inst.LateFeeAmount, "as_of", asOf.Format("2006-01-02"))
	}
	return inst, changed, nil
}

// WaiveLateFee zeroes an installment's late fee and records who did it and
// why. Idempotent. A non-permanent waiver can be re-accrued by the next
// sweep if the installment is still overdue and unpaid.
func WaiveLateFee(ctx context.Context, db *sql.DB, installmentID, reason, approverID string, permanent bool) (*models.FeeInstallment, error) {
	if reason == "" {
		return nil, models.NewValidationError("a waiver requires a reason")
	}

	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	inst, err := database.GetInstallmentForUpdate(tx, installmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("installment %s not found", installmentID)
		}
		return nil, err
	}

	if inst.LateFeeWaived && inst.LateFeeAmount.IsZero() {
		// already waived, nothing to do
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return inst, nil
	}

	inst.LateFeeAmount = decimal.Zero
	inst.LateFeeWaived = true
	inst.WaiveReason = &reason
	inst.WaivedBy = &approverID
	inst.WaiverPermanent = permanent
	inst.BalanceAmount = inst.ComputeBalance()
	inst.IsPaid = inst.BalanceAmount.IsZero() && inst.PaidAmount.IsPositive()
	if err := inst.CheckBalanceInvariant(); err != nil {
		return nil, err
	}
	if err := database.UpdateInstallmentAccrual(tx, inst); err != nil {
		return nil, err
	}
	if inst.IsPaid {
		if err := database.UpdateInstallmentPayment(tx, inst); err != nil {
			return nil, err
		}
		if err := resolveDefaulterForInstallment(tx, inst.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	config.Logger().Infow("late fee waived",
		"installment_id", inst.ID, "approver", approverID, "permanent", permanent, "reason", reason)
	return inst, nil
}

// SweepReport summarises a batch run. Errors on one student never abort the
// sweep for the rest; they are collected here instead.
type SweepReport struct {
	Processed int          `json:"processed"`
	Changed   int          `json:"changed"`
	Errors    []SweepError `json:"errors,omitempty"`
}

type SweepError struct {
	InstallmentID string `json:"installment_id"`
	StudentID     string `json:"student_id"`
	Error         string `json:"error"`
}

// RunAccrualSweep walks every unpaid overdue installment and applies the
// late fee rule, one short transaction per installment.
func RunAccrualSweep(ctx context.Context, db *sql.DB, asOf time.Time) (*SweepReport, error) {
	refs, err := database.ListOverdueInstallments(db, asOf, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue installments: %v", err)
	}

	report := &SweepReport{}
	for _, ref := range refs {
		report.Processed++
		_, changed, err := AccrueInstallment(ctx, db, ref.InstallmentID, asOf)
		if err != nil {
			report.Errors = append(report.Errors, SweepError{
				InstallmentID: ref.InstallmentID, StudentID: ref.StudentID, Error: err.Error(),
			})
			continue
		}
		if changed {
			report.Changed++
		}
	}

	config.Logger().Infow("accrual sweep finished",
		"processed", report.Processed, "changed", report.Changed, "errors", len(report.Errors))
	return report, nil
}
