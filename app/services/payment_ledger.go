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

// PaymentRequest is the ledger's input for a collection action. A nil
// InstallmentID designates an unallocated advance held against the student.
type PaymentRequest struct {
	StudentID             string
	InstallmentID         *string
	Amount                decimal.Decimal
	Method                models.PaymentMethod
	ExternalTransactionID *string
	ReceivedBy            *string
}

// RecordPayment applies a collection action to the ledger.
//
// Idempotency: when an ExternalTransactionID is supplied and a payment with
// that id already exists, the existing row is returned unchanged. The unique
// index on the column is the concurrency guard: of two concurrent inserts
// one wins, the loser sees the violation and resolves to the winner's row.
//
// Offline methods settle immediately (SUCCESS, receipt issued, installment
// credited). Gateway payments are created PENDING and settle via webhook
// reconciliation.
func RecordPayment(ctx context.Context, db *sql.DB, req PaymentRequest) (*models.FeePayment, error) {
	if !req.Amount.IsPositive() {
		return nil, models.NewValidationError("payment amount must be positive")
	}

	if req.ExternalTransactionID != nil {
		existing, err := database.GetPaymentByExternalID(db, *req.ExternalTransactionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			config.Logger().Infow("duplicate payment request ignored",
				"external_transaction_id", *req.ExternalTransactionID, "payment_id", existing.ID)
			return existing, nil
		}
	}

	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := database.GetStudentByID(tx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NewValidationError("student %s not found", req.StudentID)
		}
		return nil, err
	}

	payment := &models.FeePayment{
		StudentID:             req.StudentID,
		InstallmentID:         req.InstallmentID,
		AmountPaid:            models.Round2(req.Amount),
		AdvanceRemaining:      decimal.Zero,
		PaymentMethod:         req.Method,
		ExternalTransactionID: req.ExternalTransactionID,
		ReceivedBy:            req.ReceivedBy,
		Status:                models.PaymentPending,
	}

	settleNow := req.Method != models.MethodGateway

	if req.InstallmentID != nil {
		inst, err := database.GetInstallmentForUpdate(tx, *req.InstallmentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, models.NewValidationError("installment %s not found", *req.InstallmentID)
			}
			return nil, err
		}

		// Reading for payment triggers lazy accrual, same rule as the sweep.
		assignment, err := database.GetAssignmentByID(tx, inst.AssignmentID)
		if err != nil {
			return nil, err
		}
		structure, err := database.GetFeeStructureByID(tx, assignment.StructureID)
		if err != nil {
			return nil, err
		}
		if _, err := accrueInTx(tx, inst, structure, time.Now()); err != nil {
			return nil, err
		}

		if payment.AmountPaid.GreaterThan(inst.BalanceAmount) {
			return nil, models.ErrOverpaymentNotAllowed
		}

		if settleNow {
			if err := settlePayment(tx, payment); err != nil {
				return nil, err
			}
			if err := creditInstallment(tx, inst, payment.AmountPaid); err != nil {
				return nil, err
			}
		}
	} else {
		// unallocated advance
		if settleNow {
			payment.AdvanceRemaining = payment.AmountPaid
			if err := settlePayment(tx, payment); err != nil {
				return nil, err
			}
		}
	}

	if err := database.InsertPayment(tx, payment); err != nil {
		if database.IsUniqueViolation(err) && req.ExternalTransactionID != nil {
			// lost the race with a concurrent delivery: already applied
			tx.Rollback()
			return database.GetPaymentByExternalID(db, *req.ExternalTransactionID)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	config.Logger().Infow("payment recorded",
		"payment_id", payment.ID, "student_id", payment.StudentID,
		"amount", payment.AmountPaid, "method", payment.PaymentMethod, "status", payment.Status)
	return payment, nil
}

// settlePayment moves a payment to SUCCESS and issues its receipt number,
// exactly once.
func settlePayment(tx database.DBTX, p *models.FeePayment) error {
	if p.Status != models.PaymentPending || !p.Status.CanMoveTo(models.PaymentSuccess) {
		return models.ErrInvalidTransition
	}
	receipt, err := database.NextReceiptNumber(tx)
	if err != nil {
		return err
	}
	now := time.Now()
	p.Status = models.PaymentSuccess
	p.ReceiptNumber = &receipt
	p.PaidAt = &now
	return nil
}

// creditInstallment applies a settled amount to a locked installment row,
// recomputes the balance invariant and resolves any open defaulter row when
// the balance clears.
func creditInstallment(tx database.DBTX, inst *models.FeeInstallment, amount decimal.Decimal) error {
	inst.PaidAmount = inst.PaidAmount.Add(amount)
	inst.BalanceAmount = inst.ComputeBalance()
	if err := inst.CheckBalanceInvariant(); err != nil {
		return err
	}
	inst.IsPaid = inst.BalanceAmount.IsZero()
	if err := database.UpdateInstallmentPayment(tx, inst); err != nil {
		return err
	}
	if inst.IsPaid {
		if err := resolveDefaulterForInstallment(tx, inst.ID); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceAllocation reports one installment credited by ApplyAdvance.
type AdvanceAllocation struct {
	PaymentID     string          `json:"payment_id"`
	InstallmentID string          `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// ApplyAdvance drains the student's unallocated credit into their unpaid
// installments, oldest due date first.
func ApplyAdvance(ctx context.Context, db *sql.DB, studentID string) ([]AdvanceAllocation, error) {
	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	advances, err := database.UnallocatedAdvances(tx, studentID)
	if err != nil {
		return nil, err
	}
	installments, err := database.NextUnpaidInstallments(tx, studentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var allocations []AdvanceAllocation
	for _, inst := range installments {
		// Same rule as RecordPayment: crediting an installment runs lazy
		// accrual first, so the balance being drained includes any late fee.
		assignment, err := database.GetAssignmentByID(tx, inst.AssignmentID)
		if err != nil {
			return nil, err
		}
		structure, err := database.GetFeeStructureByID(tx, assignment.StructureID)
		if err != nil {
			return nil, err
		}
		if _, err := accrueInTx(tx, inst, structure, now); err != nil {
			return nil, err
		}

		for _, adv := range advances {
			if !adv.AdvanceRemaining.IsPositive() {
				continue
			}
			if !inst.BalanceAmount.IsPositive() {
				break
			}
			applied := decimal.Min(adv.AdvanceRemaining, inst.BalanceAmount)

			adv.AdvanceRemaining = adv.AdvanceRemaining.Sub(applied)
			if err := database.UpdatePaymentStatus(tx, adv); err != nil {
				return nil, err
			}
			if err := creditInstallment(tx, inst, applied); err != nil {
				return nil, err
			}
			allocations = append(allocations, AdvanceAllocation{
				PaymentID: adv.ID, InstallmentID: inst.ID, Amount: applied,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if len(allocations) > 0 {
		config.Logger().Infow("advance applied",
			"student_id", studentID, "allocations", len(allocations))
	}
	return allocations, nil
}

// GatewayWebhook is the reconciliation payload delivered by the payment
// gateway. Amount arrives as a decimal string.
type GatewayWebhook struct {
	ExternalTransactionID string          `json:"external_transaction_id" validate:"required"`
	Status                string          `json:"status" validate:"required,oneof=SUCCESS FAILED"`
	Amount                decimal.Decimal `json:"amount"`
	GatewayReference      string          `json:"gateway_reference"`
}

// ReconcileWebhook matches a gateway outcome to its pending payment and
// settles it, exactly once. Unknown transaction ids fail closed: the payload
// is stored for manual review and the caller gets ErrUnknownTransaction.
// A repeated webhook for an already-terminal payment is a no-op.
func ReconcileWebhook(ctx context.Context, db *sql.DB, hook GatewayWebhook, rawPayload []byte) (*models.FeePayment, error) {
	tx, err := database.BeginSerializable(ctx, db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	payment, err := database.GetPaymentByExternalIDForUpdate(tx, hook.ExternalTransactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		tx.Rollback()
		config.Logger().Warnw("webhook for unknown transaction",
			"external_transaction_id", hook.ExternalTransactionID)
		if err := database.RecordWebhookFailure(db, hook.ExternalTransactionID, rawPayload,
			models.ErrUnknownTransaction.Error()); err != nil {
			config.Logger().Errorw("failed to record webhook failure", "error", err)
		}
		return nil, models.ErrUnknownTransaction
	}

	if payment.Status.IsTerminal() {
		// second delivery of a terminal outcome: acknowledge, change nothing
		config.Logger().Infow("webhook replay ignored",
			"payment_id", payment.ID, "status", payment.Status)
		return payment, nil
	}

	if !hook.Amount.Equal(payment.AmountPaid) {
		tx.Rollback()
		cause := &models.FeeError{Kind: models.KindExternal, Code: "AmountMismatch",
			Msg: "webhook amount does not match the pending payment"}
		if err := database.RecordWebhookFailure(db, hook.ExternalTransactionID, rawPayload, cause.Error()); err != nil {
			config.Logger().Errorw("failed to record webhook failure", "error", err)
		}
		return nil, cause
	}

	ref := hook.GatewayReference
	payment.GatewayReference = &ref

	switch hook.Status {
	case "SUCCESS":
		if err := settlePayment(tx, payment); err != nil {
			return nil, err
		}
		if payment.InstallmentID != nil {
			inst, err := database.GetInstallmentForUpdate(tx, *payment.InstallmentID)
			if err != nil {
				return nil, err
			}
			// balance may have grown (late fee) since the payment was
			// initiated; any excess becomes advance credit, never lost
			applied := decimal.Min(payment.AmountPaid, inst.BalanceAmount)
			if applied.IsPositive() {
				if err := creditInstallment(tx, inst, applied); err != nil {
					return nil, err
				}
			}
			payment.AdvanceRemaining = payment.AmountPaid.Sub(applied)
		} else {
			payment.AdvanceRemaining = payment.AmountPaid
		}
	case "FAILED":
		if !payment.Status.CanMoveTo(models.PaymentFailed) {
			return nil, models.ErrInvalidTransition
		}
		payment.Status = models.PaymentFailed
	default:
		return nil, models.NewValidationError("unsupported webhook status %q", hook.Status)
	}

	if err := database.UpdatePaymentStatus(tx, payment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	config.Logger().Infow("webhook reconciled",
		"payment_id", payment.ID, "external_transaction_id", hook.ExternalTransactionID,
		"status", payment.Status)
	return payment, nil
}
