package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeRefund is owned by a payment and moves forward through
// requested -> approved -> processed -> completed, or requested -> rejected.
// Every transition records its actor and timestamp.
type FeeRefund struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PaymentID    string          `json:"payment_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	RefundAmount decimal.Decimal `json:"refund_amount" gorm:"not null;type:numeric(12,2)" validate:"required"`
	Reason       string          `json:"reason" gorm:"type:text" validate:"required"`
	Status       RefundStatus    `json:"status" gorm:"not null;default:'requested';index;type:varchar(20)"`
	RequestedBy  string          `json:"requested_by" gorm:"not null;type:uuid"`
	RequestedAt  time.Time       `json:"requested_at" gorm:"not null"`
	DecidedBy    *string         `json:"decided_by,omitempty" gorm:"type:uuid"`
	DecidedAt    *time.Time      `json:"decided_at,omitempty"`
	ProcessedBy  *string         `json:"processed_by,omitempty" gorm:"type:uuid"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	CompletedBy  *string         `json:"completed_by,omitempty" gorm:"type:uuid"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Payment *FeePayment `json:"payment,omitempty" gorm:"foreignKey:PaymentID;references:ID"`
}
