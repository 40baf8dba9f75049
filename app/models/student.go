package models

import "time"

// Student is read-only reference data consumed by the billing engines.
// Admissions owns the full record; billing only needs identity, class and
// fee category.
type Student struct {
	ID         string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID  string          `json:"student_id" gorm:"uniqueIndex;not null"`
	FirstName  string          `json:"first_name" gorm:"not null"`
	LastName   string          `json:"last_name" gorm:"not null"`
	ClassID    *string         `json:"class_id,omitempty" gorm:"index;type:uuid"`
	Category   StudentCategory `json:"category" gorm:"not null;type:varchar(30);default:'general'"`
	IsActive   bool            `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty" gorm:"index"`

	Class *Class `json:"class,omitempty" gorm:"foreignKey:ClassID;references:ID"`
}

// FullName returns the student's display name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
