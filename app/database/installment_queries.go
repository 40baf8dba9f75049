package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

const installmentColumns = `id, assignment_id, installment_number, due_date,
	gross_amount, discount_share, net_amount,
	late_fee_amount, late_fee_locked, late_fee_waived, waive_reason, waived_by, waiver_permanent,
	paid_amount, balance_amount, is_paid, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstallment(row rowScanner) (*models.FeeInstallment, error) {
	i := &models.FeeInstallment{}
	err := row.Scan(
		&i.ID, &i.AssignmentID, &i.InstallmentNumber, &i.DueDate,
		&i.GrossAmount, &i.DiscountShare, &i.NetAmount,
		&i.LateFeeAmount, &i.LateFeeLocked, &i.LateFeeWaived, &i.WaiveReason, &i.WaivedBy, &i.WaiverPermanent,
		&i.PaidAmount, &i.BalanceAmount, &i.IsPaid, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// InsertInstallments writes a generated schedule.
func InsertInstallments(q DBTX, installments []*models.FeeInstallment) error {
	query := `INSERT INTO fee_installments
				(assignment_id, installment_number, due_date,
				 gross_amount, discount_share, net_amount, balance_amount)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`

	for _, inst := range installments {
		err := q.QueryRow(query,
			inst.AssignmentID, inst.InstallmentNumber, inst.DueDate,
			inst.GrossAmount, inst.DiscountShare, inst.NetAmount, inst.BalanceAmount,
		).Scan(&inst.ID, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %v", inst.InstallmentNumber, err)
		}
	}
	return nil
}

// InstallmentCountForAssignment counts existing installments; nonzero means
// generation already ran.
func InstallmentCountForAssignment(q DBTX, assignmentID string) (int, error) {
	var n int
	err := q.QueryRow(
		`SELECT COUNT(*) FROM fee_installments WHERE assignment_id = $1`, assignmentID,
	).Scan(&n)
	return n, err
}

// GetInstallmentByID fetches one installment.
func GetInstallmentByID(q DBTX, id string) (*models.FeeInstallment, error) {
	return scanInstallment(q.QueryRow(
		`SELECT `+installmentColumns+` FROM fee_installments WHERE id = $1`, id))
}

// GetInstallmentForUpdate fetches one installment with a row lock, so the
// caller's decision is never based on a read older than its transaction.
func GetInstallmentForUpdate(q DBTX, id string) (*models.FeeInstallment, error) {
	return scanInstallment(q.QueryRow(
		`SELECT `+installmentColumns+` FROM fee_installments WHERE id = $1 FOR UPDATE`, id))
}

// GetInstallmentsByAssignment returns the schedule in installment order.
func GetInstallmentsByAssignment(q DBTX, assignmentID string) ([]*models.FeeInstallment, error) {
	rows, err := q.Query(
		`SELECT `+installmentColumns+` FROM fee_installments
		 WHERE assignment_id = $1 ORDER BY installment_number`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*models.FeeInstallment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// UpdateInstallmentAccrual persists the accrual engine's late fee decision.
func UpdateInstallmentAccrual(q DBTX, i *models.FeeInstallment) error {
	_, err := q.Exec(
		`UPDATE fee_installments SET
			late_fee_amount = $1, late_fee_locked = $2, late_fee_waived = $3,
			waive_reason = $4, waived_by = $5, waiver_permanent = $6,
			balance_amount = $7, updated_at = NOW()
		 WHERE id = $8`,
		i.LateFeeAmount, i.LateFeeLocked, i.LateFeeWaived,
		i.WaiveReason, i.WaivedBy, i.WaiverPermanent,
		i.BalanceAmount, i.ID,
	)
	return err
}

// UpdateInstallmentPayment persists the ledger's paid/balance recompute.
func UpdateInstallmentPayment(q DBTX, i *models.FeeInstallment) error {
	_, err := q.Exec(
		`UPDATE fee_installments SET
			paid_amount = $1, balance_amount = $2, is_paid = $3, updated_at = NOW()
		 WHERE id = $4`,
		i.PaidAmount, i.BalanceAmount, i.IsPaid, i.ID,
	)
	return err
}

// DueSoonInstallment is one unpaid installment inside the reminder window.
type DueSoonInstallment struct {
	InstallmentID string
	StudentID     string
	DueDate       time.Time
	Balance       decimal.Decimal
}

// ListInstallmentsDueWithin returns unpaid installments whose due date falls
// between asOf and asOf + leadDays, fuel for the reminder scan.
func ListInstallmentsDueWithin(db *sql.DB, asOf time.Time, leadDays int) ([]DueSoonInstallment, error) {
	query := `SELECT i.id, a.student_id, i.due_date, i.balance_amount
			  FROM fee_installments i
			  JOIN student_fee_assignments a ON a.id = i.assignment_id
			  WHERE i.is_paid = false
			    AND i.balance_amount > 0
			    AND i.due_date >= $1::date
			    AND i.due_date <= $1::date + make_interval(days => $2)
			  ORDER BY i.due_date, a.student_id`

	rows, err := db.Query(query, asOf, leadDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []DueSoonInstallment
	for rows.Next() {
		var d DueSoonInstallment
		if err := rows.Scan(&d.InstallmentID, &d.StudentID, &d.DueDate, &d.Balance); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// OverdueInstallmentRef identifies one unpaid, overdue installment for a
// sweep, including who owes it.
type OverdueInstallmentRef struct {
	InstallmentID string
	AssignmentID  string
	StudentID     string
}

// ListOverdueInstallments returns unpaid installments whose due date is more
// than minDaysPast days before asOf. Used by both the accrual and defaulter
// sweeps; each sweep re-reads the row inside its own transaction before
// mutating it.
func ListOverdueInstallments(db *sql.DB, asOf time.Time, minDaysPast int, studentID string) ([]OverdueInstallmentRef, error) {
	query := `SELECT i.id, i.assignment_id, a.student_id
			  FROM fee_installments i
			  JOIN student_fee_assignments a ON a.id = i.assignment_id
			  WHERE i.is_paid = false
			    AND i.balance_amount > 0
			    AND i.due_date < $1::date - make_interval(days => $2)
			    AND ($3 = '' OR a.student_id = $3::uuid)
			  ORDER BY a.student_id, i.due_date`

	rows, err := db.Query(query, asOf, minDaysPast, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []OverdueInstallmentRef
	for rows.Next() {
		var ref OverdueInstallmentRef
		if err := rows.Scan(&ref.InstallmentID, &ref.AssignmentID, &ref.StudentID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// NextUnpaidInstallments returns a student's unpaid installments, oldest due
// first, for advance application.
func NextUnpaidInstallments(q DBTX, studentID string) ([]*models.FeeInstallment, error) {
	rows, err := q.Query(
		`SELECT `+installmentColumns+` FROM fee_installments
		 WHERE is_paid = false
		   AND assignment_id IN (SELECT id FROM student_fee_assignments WHERE student_id = $1)
		 ORDER BY due_date, installment_number
		 FOR UPDATE`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installments []*models.FeeInstallment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}
