package database

import (
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
)

// RunMigrations creates or updates the billing schema. Every statement is
// idempotent so the runner is safe on every startup.
func RunMigrations(db *sql.DB) error {
	config.Logger().Info("running database migrations")

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		// Reference data consumed, not owned, by billing. Minimal columns so
		// the service runs standalone; the master-data system owns the rest.
		`CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			email text UNIQUE NOT NULL,
			password text NOT NULL,
			first_name text NOT NULL,
			last_name text NOT NULL,
			phone varchar(20),
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text UNIQUE NOT NULL,
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id uuid NOT NULL REFERENCES users(id),
			role_id uuid NOT NULL REFERENCES roles(id),
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS academic_years (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text UNIQUE NOT NULL,
			start_date date NOT NULL,
			end_date date NOT NULL,
			is_current boolean DEFAULT false,
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS classes (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text UNIQUE NOT NULL,
			code text UNIQUE NOT NULL,
			teacher_id uuid,
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id text UNIQUE NOT NULL,
			first_name text NOT NULL,
			last_name text NOT NULL,
			class_id uuid REFERENCES classes(id),
			category varchar(30) NOT NULL DEFAULT 'general',
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz
		)`,

		// Fee catalog
		`CREATE TABLE IF NOT EXISTS fee_categories (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			name text NOT NULL,
			version integer NOT NULL DEFAULT 1,
			is_refundable boolean DEFAULT false,
			refund_percentage numeric(5,2) DEFAULT 0,
			tax_percentage numeric(5,2) DEFAULT 0,
			is_active boolean DEFAULT true,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz,
			UNIQUE (name, version)
		)`,
		`CREATE TABLE IF NOT EXISTS fee_structures (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			academic_year_id uuid NOT NULL REFERENCES academic_years(id),
			class_id uuid NOT NULL REFERENCES classes(id),
			student_category varchar(30) NOT NULL,
			installment_count integer NOT NULL CHECK (installment_count > 0),
			grace_period_days integer NOT NULL DEFAULT 0,
			late_fee_amount numeric(12,2),
			late_fee_percentage numeric(5,2),
			start_due_date date NOT NULL,
			installment_gap_days integer NOT NULL DEFAULT 90,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			deleted_at timestamptz,
			UNIQUE (academic_year_id, class_id, student_category)
		)`,
		`CREATE TABLE IF NOT EXISTS fee_items (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			structure_id uuid NOT NULL REFERENCES fee_structures(id) ON DELETE CASCADE,
			category_id uuid NOT NULL REFERENCES fee_categories(id),
			amount numeric(12,2) NOT NULL CHECK (amount >= 0),
			cadence varchar(20) NOT NULL DEFAULT 'annual',
			created_at timestamptz DEFAULT now()
		)`,

		// Assignments and installments
		`CREATE TABLE IF NOT EXISTS student_fee_assignments (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id uuid NOT NULL REFERENCES students(id),
			structure_id uuid NOT NULL REFERENCES fee_structures(id),
			academic_year_id uuid NOT NULL REFERENCES academic_years(id),
			discount_percentage numeric(5,2) NOT NULL DEFAULT 0,
			discount_amount numeric(12,2) NOT NULL DEFAULT 0,
			scholarship_percentage numeric(5,2) NOT NULL DEFAULT 0,
			scholarship_amount numeric(12,2) NOT NULL DEFAULT 0,
			government_waiver numeric(12,2) NOT NULL DEFAULT 0,
			gross_amount numeric(12,2) NOT NULL,
			net_payable numeric(12,2) NOT NULL CHECK (net_payable >= 0),
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			UNIQUE (student_id, academic_year_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fee_installments (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			assignment_id uuid NOT NULL REFERENCES student_fee_assignments(id) ON DELETE CASCADE,
			installment_number integer NOT NULL,
			due_date date NOT NULL,
			gross_amount numeric(12,2) NOT NULL,
			discount_share numeric(12,2) NOT NULL DEFAULT 0,
			net_amount numeric(12,2) NOT NULL,
			late_fee_amount numeric(12,2) NOT NULL DEFAULT 0,
			late_fee_locked boolean DEFAULT false,
			late_fee_waived boolean DEFAULT false,
			waive_reason text,
			waived_by uuid,
			waiver_permanent boolean DEFAULT false,
			paid_amount numeric(12,2) NOT NULL DEFAULT 0,
			balance_amount numeric(12,2) NOT NULL CHECK (balance_amount >= 0),
			is_paid boolean DEFAULT false,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now(),
			UNIQUE (assignment_id, installment_number)
		)`,

		// Payments, refunds, defaulters
		`CREATE TABLE IF NOT EXISTS fee_payments (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id uuid NOT NULL REFERENCES students(id),
			installment_id uuid REFERENCES fee_installments(id),
			amount_paid numeric(12,2) NOT NULL CHECK (amount_paid > 0),
			advance_remaining numeric(12,2) NOT NULL DEFAULT 0,
			payment_method varchar(30) NOT NULL,
			external_transaction_id text UNIQUE,
			gateway_reference text,
			status varchar(20) NOT NULL DEFAULT 'pending',
			receipt_number text UNIQUE,
			received_by uuid,
			paid_at timestamptz,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS fee_refunds (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			payment_id uuid NOT NULL REFERENCES fee_payments(id),
			refund_amount numeric(12,2) NOT NULL CHECK (refund_amount > 0),
			reason text NOT NULL,
			status varchar(20) NOT NULL DEFAULT 'requested',
			requested_by uuid NOT NULL,
			requested_at timestamptz NOT NULL DEFAULT now(),
			decided_by uuid,
			decided_at timestamptz,
			processed_by uuid,
			processed_at timestamptz,
			completed_by uuid,
			completed_at timestamptz,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS fee_defaulters (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id uuid NOT NULL REFERENCES students(id),
			installment_id uuid NOT NULL REFERENCES fee_installments(id),
			overdue_days integer NOT NULL DEFAULT 0,
			escalation_level integer NOT NULL DEFAULT 1,
			tc_hold boolean DEFAULT false,
			exam_debarred boolean DEFAULT false,
			is_resolved boolean DEFAULT false,
			resolved_at timestamptz,
			last_sweep_at timestamptz,
			created_at timestamptz DEFAULT now(),
			updated_at timestamptz DEFAULT now()
		)`,
		// only one OPEN defaulter row per installment
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_fee_defaulters_open
			ON fee_defaulters (installment_id) WHERE is_resolved = false`,

		// Receipt numbers come from a sequence so they are unique and never
		// reused, even after refunds.
		`CREATE SEQUENCE IF NOT EXISTS receipt_sequence START 1`,

		// Webhooks that could not be applied are kept verbatim for replay.
		`CREATE TABLE IF NOT EXISTS webhook_failures (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			external_transaction_id text,
			payload jsonb NOT NULL,
			error text NOT NULL,
			resolved boolean DEFAULT false,
			created_at timestamptz DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_fee_installments_due
			ON fee_installments (due_date) WHERE is_paid = false`,
		`CREATE INDEX IF NOT EXISTS idx_fee_payments_student
			ON fee_payments (student_id, status)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			config.Logger().Errorw("migration failed", "error", err)
			return err
		}
	}

	config.Logger().Info("database migrations completed")
	return nil
}
