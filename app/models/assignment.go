package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentFeeAssignment binds a fee structure to one student for one academic
// year, with the discount stack applied. One per {student, academic_year}.
type StudentFeeAssignment struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID             string          `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StructureID           string          `json:"structure_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID        string          `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	DiscountPercentage    decimal.Decimal `json:"discount_percentage" gorm:"type:numeric(5,2);default:0"`
	DiscountAmount        decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);default:0"`
	ScholarshipPercentage decimal.Decimal `json:"scholarship_percentage" gorm:"type:numeric(5,2);default:0"`
	ScholarshipAmount     decimal.Decimal `json:"scholarship_amount" gorm:"type:numeric(12,2);default:0"`
	GovernmentWaiver      decimal.Decimal `json:"government_waiver" gorm:"type:numeric(12,2);default:0"`
	GrossAmount           decimal.Decimal `json:"gross_amount" gorm:"not null;type:numeric(12,2)"`
	NetPayable            decimal.Decimal `json:"net_payable" gorm:"not null;type:numeric(12,2)"`
	CreatedAt             time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	Student      *Student          `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Structure    *FeeStructure     `json:"structure,omitempty" gorm:"foreignKey:StructureID;references:ID"`
	Installments []*FeeInstallment `json:"installments,omitempty" gorm:"foreignKey:AssignmentID;references:ID"`
}

// DiscountOverrides are the caller-supplied adjustments applied when a
// structure is assigned to a student.
type DiscountOverrides struct {
	DiscountPercentage    decimal.Decimal `json:"discount_percentage"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	ScholarshipPercentage decimal.Decimal `json:"scholarship_percentage"`
	ScholarshipAmount     decimal.Decimal `json:"scholarship_amount"`
	GovernmentWaiver      decimal.Decimal `json:"government_waiver"`
}
