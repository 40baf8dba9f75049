package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

func TestCompletedRefundReopensInstallment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 1,
		startDue:     time.Now().AddDate(0, 0, 30),
		itemAmount:   "4000.00",
	})
	inst := acct.installments[0]

	payment, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID:     acct.studentID,
		InstallmentID: &inst.ID,
		Amount:        dec("4000.00"),
		Method:        models.MethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	actor := uuid.NewString()
	refund, err := RequestRefund(ctx, db, payment.ID, dec("2000.00"), "withdrawn mid-term", actor)
	if err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}
	if _, err := ApproveRefund(ctx, db, refund.ID, actor); err != nil {
		t.Fatalf("ApproveRefund: %v", err)
	}
	if _, err := ProcessRefund(ctx, db, refund.ID, actor); err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	completed, err := CompleteRefund(ctx, db, refund.ID, actor)
	if err != nil {
		t.Fatalf("CompleteRefund: %v", err)
	}
	if completed.Status != models.RefundCompleted {
		t.Fatalf("refund status = %s, want completed", completed.Status)
	}

	reloadedPayment, err := database.GetPaymentByID(db, payment.ID)
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if reloadedPayment.Status != models.PaymentPartiallyRefunded {
		t.Errorf("payment status = %s, want partially_refunded", reloadedPayment.Status)
	}

	reloadedInst, err := database.GetInstallmentByID(db, inst.ID)
	if err != nil {
		t.Fatalf("reload installment: %v", err)
	}
	if !reloadedInst.PaidAmount.Equal(dec("2000.00")) {
		t.Errorf("installment paid = %s, want 2000.00 after reversal", reloadedInst.PaidAmount)
	}
	if !reloadedInst.BalanceAmount.Equal(dec("2000.00")) {
		t.Errorf("installment balance = %s, want 2000.00 after reversal", reloadedInst.BalanceAmount)
	}
	if reloadedInst.IsPaid {
		t.Error("installment still marked settled after partial refund")
	}
}

func TestRefundCannotExceedRefundableRemainder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 1,
		startDue:     time.Now().AddDate(0, 0, 30),
		itemAmount:   "4000.00",
	})
	inst := acct.installments[0]

	payment, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID:     acct.studentID,
		InstallmentID: &inst.ID,
		Amount:        dec("4000.00"),
		Method:        models.MethodCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	actor := uuid.NewString()
	first, err := RequestRefund(ctx, db, payment.ID, dec("3000.00"), "fee revision", actor)
	if err != nil {
		t.Fatalf("RequestRefund: %v", err)
	}
	if _, err := ApproveRefund(ctx, db, first.ID, actor); err != nil {
		t.Fatalf("ApproveRefund: %v", err)
	}

	// The approved refund reserves its amount; only 1000 remains refundable.
	if _, err := RequestRefund(ctx, db, payment.ID, dec("2000.00"), "fee revision", actor); err != models.ErrRefundExceedsPayment {
		t.Errorf("over-refund request error = %v, want ErrRefundExceedsPayment", err)
	}
	if _, err := RequestRefund(ctx, db, payment.ID, dec("1000.00"), "fee revision", actor); err != nil {
		t.Errorf("refund within remainder rejected: %v", err)
	}
}
