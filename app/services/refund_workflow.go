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

// refundableRemainder is what the payment can still give back: amount paid
// minus everything already reserved or reversed by other refunds.
func refundableRemainder(tx database.DBTX, p *models.FeePayment, excludeRefundID string) (decimal.Decimal, error) {
	taken, err := database.SumRefunded(tx, p.ID, excludeRefundID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.AmountPaid.Sub(taken), nil
}

// RequestRefund opens a refund against a settled payment. The amount guard
// is checked here and re-checked at approval, since sibling refunds may
// complete in between.
func RequestRefund(ctx context.Context, db *sql.DB, paymentID string, amount decimal.Decimal, reason, requestedBy string) (*models.FeeRefund, error) {
	if !amount.IsPositive() {
		return nil, models.NewValidationError("refund amount must be positive")
	}
	if reason == "" {
		return nil, models.NewValidationError("refund reason is required")
	}

	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	payment, err := database.GetPaymentForUpdate(tx, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("payment %s not found", paymentID)
		}
		return nil, err
	}
	if payment.Status != models.PaymentSuccess && payment.Status != models.PaymentPartiallyRefunded {
		return nil, models.ErrNotRefundable
	}

	remainder, err := refundableRemainder(tx, payment, "")
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(remainder) {
		return nil, models.ErrRefundExceedsPayment
	}

	refund := &models.FeeRefund{
		PaymentID:    paymentID,
		RefundAmount: models.Round2(amount),
		Reason:       reason,
		Status:       models.RefundRequested,
		RequestedBy:  requestedBy,
		RequestedAt:  time.Now(),
	}
	if err := database.InsertRefund(tx, refund); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	config.Logger().Infow("refund requested",
		"refund_id", refund.ID, "payment_id", paymentID, "amount", refund.RefundAmount)
	return refund, nil
}

// transitionRefund locks the refund, validates the move and stamps the
// actor trail. extra runs inside the same transaction for state-specific
// side effects; a nil extra is a pure status move.
func transitionRefund(ctx context.Context, db *sql.DB, refundID string, to models.RefundStatus,
	actorID string, extra func(tx database.DBTX, r *models.FeeRefund) error) (*models.FeeRefund, error) {

	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	refund, err := database.GetRefundForUpdate(tx, refundID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("refund %s not found", refundID)
		}
		return nil, err
	}
	if !refund.Status.CanMoveTo(to) {
		return nil, models.ErrInvalidTransition
	}

	now := time.Now()
	refund.Status = to
	switch to {
	case models.RefundApproved, models.RefundRejected:
		refund.DecidedBy = &actorID
		refund.DecidedAt = &now
	case models.RefundProcessed:
		refund.ProcessedBy = &actorID
		refund.ProcessedAt = &now
	case models.RefundCompleted:
		refund.CompletedBy = &actorID
		refund.CompletedAt = &now
	}

	if extra != nil {
		if err := extra(tx, refund); err != nil {
			return nil, err
		}
	}
	if err := database.UpdateRefund(tx, refund); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	config.Logger().Infow("refund transitioned",
		"refund_id", refund.ID, "status", refund.Status, "actor", actorID)
	return refund, nil
}

// ApproveRefund moves requested -> approved, re-validating the amount guard
// against refunds that completed since the request.
func ApproveRefund(ctx context.Context, db *sql.DB, refundID, approverID string) (*models.FeeRefund, error) {
	return transitionRefund(ctx, db, refundID, models.RefundApproved, approverID,
		func(tx database.DBTX, r *models.FeeRefund) error {
			payment, err := database.GetPaymentForUpdate(tx, r.PaymentID)
			if err != nil {
				return err
			}
			remainder, err := refundableRemainder(tx, payment, r.ID)
			if err != nil {
				return err
			}
			if r.RefundAmount.GreaterThan(remainder) {
				return models.ErrRefundExceedsPayment
			}
			return nil
		})
}

// RejectRefund moves requested -> rejected.
func RejectRefund(ctx context.Context, db *sql.DB, refundID, approverID string) (*models.FeeRefund, error) {
	return transitionRefund(ctx, db, refundID, models.RefundRejected, approverID, nil)
}

// ProcessRefund moves approved -> processed, marking that the money is on
// its way back through the original channel.
func ProcessRefund(ctx context.Context, db *sql.DB, refundID, processorID string) (*models.FeeRefund, error) {
	return transitionRefund(ctx, db, refundID, models.RefundProcessed, processorID, nil)
}

// CompleteRefund moves processed -> completed and reverses the money in the
// ledger. For an installment payment the paid amount comes back off the
// installment; for an advance the remaining credit shrinks first.
func CompleteRefund(ctx context.Context, db *sql.DB, refundID, actorID string) (*models.FeeRefund, error) {
	return transitionRefund(ctx, db, refundID, models.RefundCompleted, actorID,
		func(tx database.DBTX, r *models.FeeRefund) error {
			payment, err := database.GetPaymentForUpdate(tx, r.PaymentID)
			if err != nil {
				return err
			}

			if payment.IsAdvance() {
				payment.AdvanceRemaining = payment.AdvanceRemaining.Sub(r.RefundAmount)
				if payment.AdvanceRemaining.IsNegative() {
					return models.NewInvariantViolation(
						"refund %s would drive advance credit negative", r.ID)
				}
			} else {
				inst, err := database.GetInstallmentForUpdate(tx, *payment.InstallmentID)
				if err != nil {
					return err
				}
				inst.PaidAmount = inst.PaidAmount.Sub(r.RefundAmount)
				if inst.PaidAmount.IsNegative() {
					return models.NewInvariantViolation(
						"refund %s would drive installment paid amount negative", r.ID)
				}
				inst.BalanceAmount = inst.ComputeBalance()
				if err := inst.CheckBalanceInvariant(); err != nil {
					return err
				}
				inst.IsPaid = inst.BalanceAmount.IsZero()
				if err := database.UpdateInstallmentPayment(tx, inst); err != nil {
					return err
				}
			}

			reversed, err := database.SumRefunded(tx, payment.ID, "")
			if err != nil {
				return err
			}
			if reversed.GreaterThanOrEqual(payment.AmountPaid) {
				if !payment.Status.CanMoveTo(models.PaymentRefunded) {
					return models.ErrInvalidTransition
				}
				payment.Status = models.PaymentRefunded
			} else if payment.Status == models.PaymentSuccess {
				payment.Status = models.PaymentPartiallyRefunded
			}
			return database.UpdatePaymentStatus(tx, payment)
		})
}
