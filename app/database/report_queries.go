package database

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Reporting projections. These only ever SUM what the ledger wrote; amounts
// are never recomputed here.

// CollectionSummary aggregates successful payments in a period.
type CollectionSummary struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	PaymentCount   int             `json:"payment_count"`
}

func GetCollectionSummary(db *sql.DB, from, to time.Time) (*CollectionSummary, error) {
	s := &CollectionSummary{From: from, To: to}
	err := db.QueryRow(
		`SELECT COALESCE(SUM(amount_paid), 0), COUNT(*)
		 FROM fee_payments
		 WHERE status IN ('success', 'partially_refunded')
		   AND paid_at >= $1 AND paid_at < $2`,
		from, to,
	).Scan(&s.TotalCollected, &s.PaymentCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FeeStats is the headline card set for the billing dashboard.
type FeeStats struct {
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalLateFees    decimal.Decimal `json:"total_late_fees"`
	OpenDefaulters   int             `json:"open_defaulters"`
	StudentsOnTCHold int             `json:"students_on_tc_hold"`
}

func GetFeeStats(db *sql.DB) (*FeeStats, error) {
	s := &FeeStats{}
	err := db.QueryRow(
		`SELECT
			COALESCE((SELECT SUM(amount_paid) FROM fee_payments
				WHERE status IN ('success', 'partially_refunded')), 0),
			COALESCE((SELECT SUM(balance_amount) FROM fee_installments
				WHERE is_paid = false), 0),
			COALESCE((SELECT SUM(late_fee_amount) FROM fee_installments
				WHERE late_fee_waived = false), 0),
			(SELECT COUNT(*) FROM fee_defaulters WHERE is_resolved = false),
			(SELECT COUNT(DISTINCT student_id) FROM fee_defaulters
				WHERE is_resolved = false AND tc_hold = true)`,
	).Scan(&s.TotalCollected, &s.TotalOutstanding, &s.TotalLateFees,
		&s.OpenDefaulters, &s.StudentsOnTCHold)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OutstandingRow is the outstanding balance grouped by class and student
// category.
type OutstandingRow struct {
	ClassID          string          `json:"class_id"`
	ClassName        string          `json:"class_name"`
	StudentCategory  string          `json:"student_category"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	InstallmentCount int             `json:"installment_count"`
}

func GetOutstandingByClass(db *sql.DB, academicYearID string) ([]*OutstandingRow, error) {
	query := `SELECT c.id, c.name, fs.student_category,
					 COALESCE(SUM(i.balance_amount), 0), COUNT(i.id)
			  FROM fee_installments i
			  JOIN student_fee_assignments a ON a.id = i.assignment_id
			  JOIN fee_structures fs ON fs.id = a.structure_id
			  JOIN classes c ON c.id = fs.class_id
			  WHERE i.is_paid = false
			    AND ($1 = '' OR a.academic_year_id = $1::uuid)
			  GROUP BY c.id, c.name, fs.student_category
			  ORDER BY c.name, fs.student_category`

	rows, err := db.Query(query, academicYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*OutstandingRow
	for rows.Next() {
		r := &OutstandingRow{}
		if err := rows.Scan(&r.ClassID, &r.ClassName, &r.StudentCategory,
			&r.Outstanding, &r.InstallmentCount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DefaulterListRow is one line of the defaulter report.
type DefaulterListRow struct {
	StudentID       string          `json:"student_id"`
	StudentCode     string          `json:"student_code"`
	StudentName     string          `json:"student_name"`
	InstallmentID   string          `json:"installment_id"`
	DueDate         time.Time       `json:"due_date"`
	Balance         decimal.Decimal `json:"balance"`
	OverdueDays     int             `json:"overdue_days"`
	EscalationLevel int             `json:"escalation_level"`
	TCHold          bool            `json:"tc_hold"`
	ExamDebarred    bool            `json:"exam_debarred"`
}

func GetDefaulterList(db *sql.DB) ([]*DefaulterListRow, error) {
	query := `SELECT s.id, s.student_id, s.first_name || ' ' || s.last_name,
					 d.installment_id, i.due_date, i.balance_amount,
					 d.overdue_days, d.escalation_level, d.tc_hold, d.exam_debarred
			  FROM fee_defaulters d
			  JOIN students s ON s.id = d.student_id
			  JOIN fee_installments i ON i.id = d.installment_id
			  WHERE d.is_resolved = false
			  ORDER BY d.escalation_level DESC, d.overdue_days DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*DefaulterListRow
	for rows.Next() {
		r := &DefaulterListRow{}
		if err := rows.Scan(&r.StudentID, &r.StudentCode, &r.StudentName,
			&r.InstallmentID, &r.DueDate, &r.Balance,
			&r.OverdueDays, &r.EscalationLevel, &r.TCHold, &r.ExamDebarred); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
