package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// resolveDefaulterForInstallment closes the open defaulter row, if any, for
// an installment whose balance just cleared. Holds are lifted with it.
// Resolution is one-way: a later overdue installment opens a fresh row.
func resolveDefaulterForInstallment(tx database.DBTX, installmentID string) error {
	d, err := database.GetOpenDefaulterForUpdate(tx, installmentID)
	if err != nil || d == nil {
		return err
	}
	now := time.Now()
	d.IsResolved = true
	d.ResolvedAt = &now
	d.TCHold = false
	d.ExamDebarred = false
	if err := database.UpdateDefaulter(tx, d); err != nil {
		return err
	}
	config.Logger().Infow("defaulter resolved",
		"defaulter_id", d.ID, "student_id", d.StudentID, "installment_id", installmentID)
	return nil
}

// sameCalendarDay compares two instants in local time.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sweepInstallment opens or escalates the defaulter row for one overdue
// installment, in its own transaction so one bad row cannot poison the run.
// Escalation advances at most one level per calendar day regardless of how
// often the sweep runs. Returns the notification decision to emit, or nil.
func sweepInstallment(ctx context.Context, db *sql.DB, ref database.OverdueInstallmentRef,
	policy models.EscalationPolicy, asOf time.Time) (*models.NotificationDecision, error) {

	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	inst, err := database.GetInstallmentForUpdate(tx, ref.InstallmentID)
	if err != nil {
		return nil, err
	}
	if inst.IsPaid || !inst.BalanceAmount.IsPositive() {
		// settled between listing and locking
		return nil, nil
	}
	overdueDays := inst.OverdueDays(asOf)

	d, err := database.GetOpenDefaulterForUpdate(tx, ref.InstallmentID)
	if err != nil {
		return nil, err
	}

	var decision *models.NotificationDecision
	if d == nil {
		now := asOf
		d = &models.FeeDefaulter{
			StudentID:       ref.StudentID,
			InstallmentID:   ref.InstallmentID,
			OverdueDays:     overdueDays,
			EscalationLevel: 1,
			LastSweepAt:     &now,
		}
		d.TCHold, d.ExamDebarred = policy.HoldsAt(1)
		if err := database.InsertDefaulter(tx, d); err != nil {
			if database.IsUniqueViolation(err) {
				// concurrent sweep already opened the row
				tx.Rollback()
				return nil, nil
			}
			return nil, err
		}
		decision = &models.NotificationDecision{
			StudentID:     ref.StudentID,
			Trigger:       models.TriggerOverdueNotice,
			InstallmentID: ref.InstallmentID,
			Amount:        inst.BalanceAmount,
		}
	} else {
		escalate := d.LastSweepAt == nil || !sameCalendarDay(*d.LastSweepAt, asOf)
		d.OverdueDays = overdueDays
		now := asOf
		d.LastSweepAt = &now
		if escalate && d.EscalationLevel < policy.MaxLevel {
			d.EscalationLevel = policy.NextLevel(d.EscalationLevel)
			d.TCHold, d.ExamDebarred = policy.HoldsAt(d.EscalationLevel)
			decision = &models.NotificationDecision{
				StudentID:     ref.StudentID,
				Trigger:       models.TriggerOverdueNotice,
				InstallmentID: ref.InstallmentID,
				Amount:        inst.BalanceAmount,
			}
		}
		if err := database.UpdateDefaulter(tx, d); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return decision, nil
}

// RunDefaulterSweep scans all installments past the policy threshold and
// opens or escalates defaulter rows. Notification decisions are handed to
// the dispatcher after each row commits, never from inside the transaction.
func RunDefaulterSweep(ctx context.Context, db *sql.DB, pol config.FeePolicy,
	notifier Notifier, asOf time.Time) (*SweepReport, error) {
	return sweepDefaulters(ctx, db, pol, notifier, asOf, "")
}

// SweepStudentDefaulters runs the defaulter sweep for a single student, used
// when front office needs current hold state before re-listing overdues.
func SweepStudentDefaulters(ctx context.Context, db *sql.DB, pol config.FeePolicy,
	notifier Notifier, asOf time.Time, studentID string) (*SweepReport, error) {
	return sweepDefaulters(ctx, db, pol, notifier, asOf, studentID)
}

func sweepDefaulters(ctx context.Context, db *sql.DB, pol config.FeePolicy,
	notifier Notifier, asOf time.Time, studentID string) (*SweepReport, error) {

	refs, err := database.ListOverdueInstallments(db, asOf, pol.DefaulterThresholdDays, studentID)
	if err != nil {
		return nil, err
	}

	policy := models.EscalationPolicy{
		MaxLevel:       pol.MaxEscalationLevel,
		TCHoldLevel:    pol.TCHoldLevel,
		ExamDebarLevel: pol.ExamDebarLevel,
	}

	report := &SweepReport{}
	for _, ref := range refs {
		report.Processed++
		decision, err := sweepInstallment(ctx, db, ref, policy, asOf)
		if err != nil {
			config.Logger().Errorw("defaulter sweep item failed",
				"installment_id", ref.InstallmentID, "error", err)
			report.Errors = append(report.Errors, SweepError{
				InstallmentID: ref.InstallmentID, StudentID: ref.StudentID, Error: err.Error(),
			})
			continue
		}
		if decision != nil {
			report.Changed++
			if notifier != nil {
				notifier.Notify(*decision)
			}
		}
	}

	config.Logger().Infow("defaulter sweep finished",
		"processed", report.Processed, "changed", report.Changed, "errors", len(report.Errors))
	return report, nil
}
