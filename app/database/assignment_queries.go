package database

import (
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// AssignmentExists reports whether the student already has an assignment for
// the academic year.
func AssignmentExists(q DBTX, studentID, academicYearID string) (bool, error) {
	var exists bool
	err := q.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM student_fee_assignments
		 WHERE student_id = $1 AND academic_year_id = $2)`,
		studentID, academicYearID,
	).Scan(&exists)
	return exists, err
}

// InsertAssignment writes a computed assignment row.
func InsertAssignment(q DBTX, a *models.StudentFeeAssignment) error {
	query := `INSERT INTO student_fee_assignments
				(student_id, structure_id, academic_year_id,
				 discount_percentage, discount_amount,
				 scholarship_percentage, scholarship_amount, government_waiver,
				 gross_amount, net_payable)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id, created_at, updated_at`

	return q.QueryRow(query,
		a.StudentID, a.StructureID, a.AcademicYearID,
		a.DiscountPercentage, a.DiscountAmount,
		a.ScholarshipPercentage, a.ScholarshipAmount, a.GovernmentWaiver,
		a.GrossAmount, a.NetPayable,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func scanAssignment(row *sql.Row) (*models.StudentFeeAssignment, error) {
	a := &models.StudentFeeAssignment{}
	err := row.Scan(
		&a.ID, &a.StudentID, &a.StructureID, &a.AcademicYearID,
		&a.DiscountPercentage, &a.DiscountAmount,
		&a.ScholarshipPercentage, &a.ScholarshipAmount, &a.GovernmentWaiver,
		&a.GrossAmount, &a.NetPayable, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

const assignmentColumns = `id, student_id, structure_id, academic_year_id,
	discount_percentage, discount_amount,
	scholarship_percentage, scholarship_amount, government_waiver,
	gross_amount, net_payable, created_at, updated_at`

// GetAssignmentByID fetches one assignment.
func GetAssignmentByID(q DBTX, id string) (*models.StudentFeeAssignment, error) {
	return scanAssignment(q.QueryRow(
		`SELECT `+assignmentColumns+` FROM student_fee_assignments WHERE id = $1`, id))
}

// GetAssignmentByStudentYear fetches the student's assignment for a year.
func GetAssignmentByStudentYear(q DBTX, studentID, academicYearID string) (*models.StudentFeeAssignment, error) {
	return scanAssignment(q.QueryRow(
		`SELECT `+assignmentColumns+` FROM student_fee_assignments
		 WHERE student_id = $1 AND academic_year_id = $2`, studentID, academicYearID))
}

// UpdateAssignmentDiscounts rewrites the discount stack and recomputed
// totals. Legal only before the first payment; the service enforces that.
func UpdateAssignmentDiscounts(q DBTX, a *models.StudentFeeAssignment) error {
	_, err := q.Exec(
		`UPDATE student_fee_assignments SET
			discount_percentage = $1, discount_amount = $2,
			scholarship_percentage = $3, scholarship_amount = $4,
			government_waiver = $5, net_payable = $6, updated_at = NOW()
		 WHERE id = $7`,
		a.DiscountPercentage, a.DiscountAmount,
		a.ScholarshipPercentage, a.ScholarshipAmount,
		a.GovernmentWaiver, a.NetPayable, a.ID,
	)
	return err
}

// AssignmentHasPayments reports whether any successful payment touched the
// assignment's installments.
func AssignmentHasPayments(q DBTX, assignmentID string) (bool, error) {
	var exists bool
	err := q.QueryRow(
		`SELECT EXISTS (
			SELECT 1 FROM fee_payments p
			JOIN fee_installments i ON i.id = p.installment_id
			WHERE i.assignment_id = $1 AND p.status = 'success')`,
		assignmentID,
	).Scan(&exists)
	return exists, err
}
