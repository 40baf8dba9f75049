package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStructure defines what a class/category of students is charged for one
// academic year, and how the total is collected (installments, grace, late
// fee policy). Unique per {academic_year, class, student_category}.
type FeeStructure struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	AcademicYearID     string           `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ClassID            string           `json:"class_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentCategory    StudentCategory  `json:"student_category" gorm:"not null;type:varchar(30)" validate:"required"`
	InstallmentCount   int              `json:"installment_count" gorm:"not null" validate:"required,gt=0"`
	GracePeriodDays    int              `json:"grace_period_days" gorm:"not null;default:0" validate:"gte=0"`
	LateFeeAmount      *decimal.Decimal `json:"late_fee_amount,omitempty" gorm:"type:numeric(12,2)"`
	LateFeePercentage  *decimal.Decimal `json:"late_fee_percentage,omitempty" gorm:"type:numeric(5,2)"`
	StartDueDate       CustomTime       `json:"start_due_date" gorm:"not null;type:date" validate:"required"`
	InstallmentGapDays int              `json:"installment_gap_days" gorm:"not null;default:90" validate:"gt=0"`
	CreatedAt          time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt          *time.Time       `json:"deleted_at,omitempty" gorm:"index"`

	Items        []*FeeItem    `json:"items,omitempty" gorm:"foreignKey:StructureID;references:ID"`
	AcademicYear *AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID;references:ID"`
	Class        *Class        `json:"class,omitempty" gorm:"foreignKey:ClassID;references:ID"`
}

// GrossTotal sums the structure's item amounts including category tax.
func (s *FeeStructure) GrossTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.AmountWithTax())
	}
	return Round2(total)
}

// FeeItem is one charged line within a structure.
type FeeItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StructureID string          `json:"structure_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	CategoryID  string          `json:"category_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" gorm:"not null;type:numeric(12,2)" validate:"required"`
	Cadence     Cadence         `json:"cadence" gorm:"not null;type:varchar(20);default:'annual'" validate:"required,oneof=one_time monthly quarterly annual"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`

	Category *FeeCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID"`
}

// AmountWithTax applies the category's flat tax rate when the category is
// loaded; without it the raw amount is returned.
func (i *FeeItem) AmountWithTax() decimal.Decimal {
	if i.Category == nil || i.Category.TaxPercentage.IsZero() {
		return i.Amount
	}
	return Round2(i.Amount.Add(Percent(i.Amount, i.Category.TaxPercentage)))
}
