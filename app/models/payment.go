package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeePayment records money received from (or on behalf of) a student.
// InstallmentID is nil for unallocated advance payments held against the
// student. ExternalTransactionID, when present, is globally unique and is
// the idempotency key for gateway reconciliation. Immutable once SUCCESS,
// except through the refund workflow.
type FeePayment struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID             string          `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	InstallmentID         *string         `json:"installment_id,omitempty" gorm:"index;type:uuid"`
	AmountPaid            decimal.Decimal `json:"amount_paid" gorm:"not null;type:numeric(12,2)" validate:"required"`
	AdvanceRemaining      decimal.Decimal `json:"advance_remaining" gorm:"type:numeric(12,2);default:0"`
	PaymentMethod         PaymentMethod   `json:"payment_method" gorm:"not null;type:varchar(30)" validate:"required"`
	ExternalTransactionID *string         `json:"external_transaction_id,omitempty" gorm:"uniqueIndex"`
	GatewayReference      *string         `json:"gateway_reference,omitempty"`
	Status                PaymentStatus   `json:"status" gorm:"not null;default:'pending';index;type:varchar(20)"`
	ReceiptNumber         *string         `json:"receipt_number,omitempty" gorm:"uniqueIndex"`
	ReceivedBy            *string         `json:"received_by,omitempty" gorm:"type:uuid"`
	PaidAt                *time.Time      `json:"paid_at,omitempty" gorm:"index"`
	CreatedAt             time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Student     *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Installment *FeeInstallment `json:"installment,omitempty" gorm:"foreignKey:InstallmentID;references:ID"`
	Refunds     []*FeeRefund    `json:"refunds,omitempty" gorm:"foreignKey:PaymentID;references:ID"`
}

// IsAdvance reports whether the payment is held unallocated against the student.
func (p *FeePayment) IsAdvance() bool {
	return p.InstallmentID == nil
}
