package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeInstallment is one due-dated slice of an assignment's net payable.
// Created once by the generator; after that only the accrual engine touches
// late_fee_amount and only the payment ledger touches paid_amount/balance.
type FeeInstallment struct {
	ID                string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AssignmentID      string          `json:"assignment_id" gorm:"not null;index;type:uuid"`
	InstallmentNumber int             `json:"installment_number" gorm:"not null"`
	DueDate           CustomTime      `json:"due_date" gorm:"not null;type:date"`
	GrossAmount       decimal.Decimal `json:"gross_amount" gorm:"not null;type:numeric(12,2)"`
	DiscountShare     decimal.Decimal `json:"discount_share" gorm:"type:numeric(12,2);default:0"`
	NetAmount         decimal.Decimal `json:"net_amount" gorm:"not null;type:numeric(12,2)"`
	LateFeeAmount     decimal.Decimal `json:"late_fee_amount" gorm:"type:numeric(12,2);default:0"`
	LateFeeLocked     bool            `json:"late_fee_locked" gorm:"default:false"`
	LateFeeWaived     bool            `json:"late_fee_waived" gorm:"default:false"`
	WaiveReason       *string         `json:"waive_reason,omitempty"`
	WaivedBy          *string         `json:"waived_by,omitempty" gorm:"type:uuid"`
	WaiverPermanent   bool            `json:"waiver_permanent" gorm:"default:false"`
	PaidAmount        decimal.Decimal `json:"paid_amount" gorm:"type:numeric(12,2);default:0"`
	BalanceAmount     decimal.Decimal `json:"balance_amount" gorm:"not null;type:numeric(12,2)"`
	IsPaid            bool            `json:"is_paid" gorm:"default:false;index"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Assignment *StudentFeeAssignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID;references:ID"`
}

// ComputeBalance returns net + late fee - paid, the only legal balance value.
func (i *FeeInstallment) ComputeBalance() decimal.Decimal {
	return i.NetAmount.Add(i.LateFeeAmount).Sub(i.PaidAmount)
}

// CheckBalanceInvariant verifies balance = net + late_fee - paid >= 0.
// A violation is a bug signal, never something to clamp.
func (i *FeeInstallment) CheckBalanceInvariant() error {
	expect := i.ComputeBalance()
	if !i.BalanceAmount.Equal(expect) {
		return NewInvariantViolation(
			"installment %s balance %s != net %s + late %s - paid %s",
			i.ID, i.BalanceAmount, i.NetAmount, i.LateFeeAmount, i.PaidAmount)
	}
	if i.BalanceAmount.IsNegative() {
		return NewInvariantViolation("installment %s has negative balance %s", i.ID, i.BalanceAmount)
	}
	return nil
}

// Overdue reports whether the installment is past due (before grace) at asOf.
func (i *FeeInstallment) Overdue(asOf time.Time) bool {
	return asOf.After(i.DueDate.Time) && i.BalanceAmount.IsPositive()
}

// OverdueDays returns whole days elapsed since the due date, floored at 0.
func (i *FeeInstallment) OverdueDays(asOf time.Time) int {
	d := int(asOf.Sub(i.DueDate.Time).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
