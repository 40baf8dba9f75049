package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, student_id, installment_id, amount_paid, advance_remaining,
	payment_method, external_transaction_id, gateway_reference,
	status, receipt_number, received_by, paid_at, created_at, updated_at`

func scanPayment(row rowScanner) (*models.FeePayment, error) {
	p := &models.FeePayment{}
	err := row.Scan(
		&p.ID, &p.StudentID, &p.InstallmentID, &p.AmountPaid, &p.AdvanceRemaining,
		&p.PaymentMethod, &p.ExternalTransactionID, &p.GatewayReference,
		&p.Status, &p.ReceiptNumber, &p.ReceivedBy, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertPayment writes a payment row. The unique index on
// external_transaction_id is the concurrency guard for idempotency: the
// loser of two concurrent inserts gets a unique violation, which
// IsUniqueViolation lets the caller resolve to "already applied".
func InsertPayment(q DBTX, p *models.FeePayment) error {
	query := `INSERT INTO fee_payments
				(student_id, installment_id, amount_paid, advance_remaining, payment_method,
				 external_transaction_id, gateway_reference, status, receipt_number, received_by, paid_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at, updated_at`

	return q.QueryRow(query,
		p.StudentID, p.InstallmentID, p.AmountPaid, p.AdvanceRemaining, string(p.PaymentMethod),
		p.ExternalTransactionID, p.GatewayReference, string(p.Status), p.ReceiptNumber, p.ReceivedBy, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally on a named constraint.
func IsUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// GetPaymentByID fetches one payment.
func GetPaymentByID(q DBTX, id string) (*models.FeePayment, error) {
	return scanPayment(q.QueryRow(
		`SELECT `+paymentColumns+` FROM fee_payments WHERE id = $1`, id))
}

// GetPaymentForUpdate fetches one payment with a row lock.
func GetPaymentForUpdate(q DBTX, id string) (*models.FeePayment, error) {
	return scanPayment(q.QueryRow(
		`SELECT `+paymentColumns+` FROM fee_payments WHERE id = $1 FOR UPDATE`, id))
}

// GetPaymentByExternalID looks a payment up by its gateway transaction id.
func GetPaymentByExternalID(q DBTX, externalID string) (*models.FeePayment, error) {
	p, err := scanPayment(q.QueryRow(
		`SELECT `+paymentColumns+` FROM fee_payments WHERE external_transaction_id = $1`, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetPaymentByExternalIDForUpdate is the locked variant used by webhook
// reconciliation so two concurrent deliveries serialize on the row.
func GetPaymentByExternalIDForUpdate(q DBTX, externalID string) (*models.FeePayment, error) {
	p, err := scanPayment(q.QueryRow(
		`SELECT `+paymentColumns+` FROM fee_payments WHERE external_transaction_id = $1 FOR UPDATE`, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetPaymentsByStudent returns a student's payments, newest first.
func GetPaymentsByStudent(db *sql.DB, studentID string) ([]*models.FeePayment, error) {
	rows, err := db.Query(
		`SELECT `+paymentColumns+` FROM fee_payments
		 WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.FeePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdatePaymentStatus persists a legal status transition plus the fields the
// transition sets.
func UpdatePaymentStatus(q DBTX, p *models.FeePayment) error {
	_, err := q.Exec(
		`UPDATE fee_payments SET
			status = $1, receipt_number = $2, gateway_reference = $3,
			paid_at = $4, advance_remaining = $5, updated_at = NOW()
		 WHERE id = $6`,
		string(p.Status), p.ReceiptNumber, p.GatewayReference,
		p.PaidAt, p.AdvanceRemaining, p.ID,
	)
	return err
}

// NextReceiptNumber draws the next RCP number from the sequence. Numbers are
// issued exactly once per successful payment and never reused.
func NextReceiptNumber(q DBTX) (string, error) {
	var n int64
	if err := q.QueryRow(`SELECT nextval('receipt_sequence')`).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to draw receipt number: %v", err)
	}
	return fmt.Sprintf("RCP%05d", n), nil
}

// UnallocatedAdvances returns the student's settled payments that still
// carry advance credit, oldest first, locked for application. A payment
// made against an installment can carry credit too: webhook reconciliation
// parks any amount beyond the installment's balance in advance_remaining.
func UnallocatedAdvances(q DBTX, studentID string) ([]*models.FeePayment, error) {
	rows, err := q.Query(
		`SELECT `+paymentColumns+` FROM fee_payments
		 WHERE student_id = $1 AND advance_remaining > 0
		   AND status IN ('success', 'partially_refunded')
		 ORDER BY created_at
		 FOR UPDATE`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.FeePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// RecordWebhookFailure stores the full payload of a webhook that could not
// be applied, for manual reconciliation and replay.
func RecordWebhookFailure(db *sql.DB, externalID string, payload []byte, cause string) error {
	_, err := db.Exec(
		`INSERT INTO webhook_failures (external_transaction_id, payload, error)
		 VALUES ($1, $2, $3)`,
		externalID, payload, cause,
	)
	return err
}

// SumRefunded returns the total amount reserved or reversed by the payment's
// approved/processed/completed refunds.
func SumRefunded(q DBTX, paymentID string, excludeRefundID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRow(
		`SELECT COALESCE(SUM(refund_amount), 0) FROM fee_refunds
		 WHERE payment_id = $1 AND id::text <> $2
		   AND status IN ('approved', 'processed', 'completed')`,
		paymentID, excludeRefundID,
	).Scan(&total)
	return total, err
}
