package database

import (
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

const defaulterColumns = `id, student_id, installment_id, overdue_days, escalation_level,
	tc_hold, exam_debarred, is_resolved, resolved_at, last_sweep_at, created_at, updated_at`

func scanDefaulter(row rowScanner) (*models.FeeDefaulter, error) {
	d := &models.FeeDefaulter{}
	err := row.Scan(
		&d.ID, &d.StudentID, &d.InstallmentID, &d.OverdueDays, &d.EscalationLevel,
		&d.TCHold, &d.ExamDebarred, &d.IsResolved, &d.ResolvedAt, &d.LastSweepAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetOpenDefaulterForUpdate returns the open defaulter row for an
// installment, or nil, locked for the sweep's transaction.
func GetOpenDefaulterForUpdate(q DBTX, installmentID string) (*models.FeeDefaulter, error) {
	d, err := scanDefaulter(q.QueryRow(
		`SELECT `+defaulterColumns+` FROM fee_defaulters
		 WHERE installment_id = $1 AND is_resolved = false FOR UPDATE`, installmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// InsertDefaulter opens a new defaulter row at level 1. The partial unique
// index on open rows makes concurrent opens collapse to one.
func InsertDefaulter(q DBTX, d *models.FeeDefaulter) error {
	query := `INSERT INTO fee_defaulters
				(student_id, installment_id, overdue_days, escalation_level,
				 tc_hold, exam_debarred, last_sweep_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`

	return q.QueryRow(query,
		d.StudentID, d.InstallmentID, d.OverdueDays, d.EscalationLevel,
		d.TCHold, d.ExamDebarred, d.LastSweepAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// UpdateDefaulter persists a sweep escalation or a resolution.
func UpdateDefaulter(q DBTX, d *models.FeeDefaulter) error {
	_, err := q.Exec(
		`UPDATE fee_defaulters SET
			overdue_days = $1, escalation_level = $2, tc_hold = $3, exam_debarred = $4,
			is_resolved = $5, resolved_at = $6, last_sweep_at = $7, updated_at = NOW()
		 WHERE id = $8`,
		d.OverdueDays, d.EscalationLevel, d.TCHold, d.ExamDebarred,
		d.IsResolved, d.ResolvedAt, d.LastSweepAt, d.ID,
	)
	return err
}

// ListOpenDefaulters returns unresolved defaulter rows, optionally for one
// student, most overdue first.
func ListOpenDefaulters(db *sql.DB, studentID string) ([]*models.FeeDefaulter, error) {
	query := `SELECT ` + defaulterColumns + ` FROM fee_defaulters
			  WHERE is_resolved = false AND ($1 = '' OR student_id = $1::uuid)
			  ORDER BY overdue_days DESC, created_at`

	rows, err := db.Query(query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defaulters []*models.FeeDefaulter
	for rows.Next() {
		d, err := scanDefaulter(rows)
		if err != nil {
			return nil, err
		}
		defaulters = append(defaulters, d)
	}
	return defaulters, rows.Err()
}
