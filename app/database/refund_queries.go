package database

import (
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

const refundColumns = `id, payment_id, refund_amount, reason, status,
	requested_by, requested_at, decided_by, decided_at,
	processed_by, processed_at, completed_by, completed_at, created_at, updated_at`

func scanRefund(row rowScanner) (*models.FeeRefund, error) {
	r := &models.FeeRefund{}
	err := row.Scan(
		&r.ID, &r.PaymentID, &r.RefundAmount, &r.Reason, &r.Status,
		&r.RequestedBy, &r.RequestedAt, &r.DecidedBy, &r.DecidedAt,
		&r.ProcessedBy, &r.ProcessedAt, &r.CompletedBy, &r.CompletedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// InsertRefund writes a new refund request.
func InsertRefund(q DBTX, r *models.FeeRefund) error {
	query := `INSERT INTO fee_refunds (payment_id, refund_amount, reason, status, requested_by, requested_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, created_at, updated_at`

	return q.QueryRow(query,
		r.PaymentID, r.RefundAmount, r.Reason, string(r.Status), r.RequestedBy, r.RequestedAt,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

// GetRefundForUpdate fetches one refund with a row lock for a transition.
func GetRefundForUpdate(q DBTX, id string) (*models.FeeRefund, error) {
	return scanRefund(q.QueryRow(
		`SELECT `+refundColumns+` FROM fee_refunds WHERE id = $1 FOR UPDATE`, id))
}

// GetRefundByID fetches one refund.
func GetRefundByID(q DBTX, id string) (*models.FeeRefund, error) {
	return scanRefund(q.QueryRow(
		`SELECT `+refundColumns+` FROM fee_refunds WHERE id = $1`, id))
}

// GetRefundsByPayment returns a payment's refunds, oldest first.
func GetRefundsByPayment(db *sql.DB, paymentID string) ([]*models.FeeRefund, error) {
	rows, err := db.Query(
		`SELECT `+refundColumns+` FROM fee_refunds
		 WHERE payment_id = $1 ORDER BY created_at`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []*models.FeeRefund
	for rows.Next() {
		r, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, r)
	}
	return refunds, rows.Err()
}

// UpdateRefund persists a transition with its actor/timestamp trail.
func UpdateRefund(q DBTX, r *models.FeeRefund) error {
	_, err := q.Exec(
		`UPDATE fee_refunds SET
			status = $1, decided_by = $2, decided_at = $3,
			processed_by = $4, processed_at = $5,
			completed_by = $6, completed_at = $7, updated_at = NOW()
		 WHERE id = $8`,
		string(r.Status), r.DecidedBy, r.DecidedAt,
		r.ProcessedBy, r.ProcessedAt,
		r.CompletedBy, r.CompletedAt, r.ID,
	)
	return err
}
