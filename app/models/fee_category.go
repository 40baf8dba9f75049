package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeCategory represents a kind of charge in the fee catalog (tuition,
// transport, lab...). Once a structure with live assignments references a
// category, edits create a new version row instead of mutating in place.
type FeeCategory struct {
	ID               string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Name             string          `json:"name" gorm:"not null;index" validate:"required"`
	Version          int             `json:"version" gorm:"not null;default:1"`
	IsRefundable     bool            `json:"is_refundable" gorm:"default:false"`
	RefundPercentage decimal.Decimal `json:"refund_percentage" gorm:"type:numeric(5,2);default:0" validate:"omitempty"`
	TaxPercentage    decimal.Decimal `json:"tax_percentage" gorm:"type:numeric(5,2);default:0"`
	IsActive         bool            `json:"is_active" gorm:"default:true;index"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty" gorm:"index"`
}
