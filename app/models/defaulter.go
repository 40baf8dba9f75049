package models

import "time"

// FeeDefaulter is a derived row: one per {student, installment} currently
// overdue beyond the policy threshold. Recomputed by the sweep, never
// hand-edited. Levels only ever go up; resolution is one-way and happens
// only when the installment balance clears.
type FeeDefaulter struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID       string     `json:"student_id" gorm:"not null;index;type:uuid"`
	InstallmentID   string     `json:"installment_id" gorm:"not null;index;type:uuid"`
	OverdueDays     int        `json:"overdue_days" gorm:"not null"`
	EscalationLevel int        `json:"escalation_level" gorm:"not null;default:1"`
	TCHold          bool       `json:"tc_hold" gorm:"default:false"`
	ExamDebarred    bool       `json:"exam_debarred" gorm:"default:false"`
	IsResolved      bool       `json:"is_resolved" gorm:"default:false;index"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	LastSweepAt     *time.Time `json:"last_sweep_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Student     *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Installment *FeeInstallment `json:"installment,omitempty" gorm:"foreignKey:InstallmentID;references:ID"`
}

// EscalationPolicy maps escalation levels to the holds they trigger.
// Kept as data, not per-installment conditionals, so schools can tune it.
type EscalationPolicy struct {
	MaxLevel       int
	TCHoldLevel    int
	ExamDebarLevel int
}

// HoldsAt returns the holds that apply at a given level.
func (p EscalationPolicy) HoldsAt(level int) (tcHold, examDebarred bool) {
	return level >= p.TCHoldLevel, level >= p.ExamDebarLevel
}

// NextLevel increments a level, capped at MaxLevel.
func (p EscalationPolicy) NextLevel(level int) int {
	if level >= p.MaxLevel {
		return p.MaxLevel
	}
	return level + 1
}
