package database

import (
	"database/sql"
	"fmt"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
	"github.com/shopspring/decimal"
)

// CreateFeeCategory inserts a new catalog category at version 1.
func CreateFeeCategory(db *sql.DB, cat *models.FeeCategory) error {
	query := `INSERT INTO fee_categories (name, is_refundable, refund_percentage, tax_percentage)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, version, created_at, updated_at`

	return db.QueryRow(query, cat.Name, cat.IsRefundable, cat.RefundPercentage, cat.TaxPercentage).
		Scan(&cat.ID, &cat.Version, &cat.CreatedAt, &cat.UpdatedAt)
}

// GetFeeCategoryByID fetches a single active category.
func GetFeeCategoryByID(q DBTX, id string) (*models.FeeCategory, error) {
	cat := &models.FeeCategory{}
	query := `SELECT id, name, version, is_refundable, refund_percentage, tax_percentage, is_active, created_at, updated_at
			  FROM fee_categories WHERE id = $1 AND deleted_at IS NULL`

	err := q.QueryRow(query, id).Scan(
		&cat.ID, &cat.Name, &cat.Version, &cat.IsRefundable,
		&cat.RefundPercentage, &cat.TaxPercentage, &cat.IsActive,
		&cat.CreatedAt, &cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// GetAllFeeCategories lists active categories, newest version of each first.
func GetAllFeeCategories(db *sql.DB) ([]*models.FeeCategory, error) {
	query := `SELECT id, name, version, is_refundable, refund_percentage, tax_percentage, is_active, created_at, updated_at
			  FROM fee_categories
			  WHERE deleted_at IS NULL AND is_active = true
			  ORDER BY name, version DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.FeeCategory
	for rows.Next() {
		cat := &models.FeeCategory{}
		if err := rows.Scan(
			&cat.ID, &cat.Name, &cat.Version, &cat.IsRefundable,
			&cat.RefundPercentage, &cat.TaxPercentage, &cat.IsActive,
			&cat.CreatedAt, &cat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// CategoryHasLiveAssignments reports whether any structure referencing the
// category already has student assignments. Such categories are immutable;
// edits must create a new version.
func CategoryHasLiveAssignments(q DBTX, categoryID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
				SELECT 1 FROM student_fee_assignments a
				JOIN fee_items i ON i.structure_id = a.structure_id
				WHERE i.category_id = $1)`

	if err := q.QueryRow(query, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateFeeCategory mutates a category in place. Only legal while no live
// assignments reference it; callers check CategoryHasLiveAssignments first.
func UpdateFeeCategory(db *sql.DB, cat *models.FeeCategory) error {
	_, err := db.Exec(
		`UPDATE fee_categories SET
			name = $1, is_refundable = $2, refund_percentage = $3, tax_percentage = $4,
			updated_at = NOW()
		 WHERE id = $5 AND deleted_at IS NULL`,
		cat.Name, cat.IsRefundable, cat.RefundPercentage, cat.TaxPercentage, cat.ID,
	)
	return err
}

// CreateFeeCategoryVersion inserts the next version of an existing category
// and retires the old one.
func CreateFeeCategoryVersion(db *sql.DB, old *models.FeeCategory, updated *models.FeeCategory) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE fee_categories SET is_active = false, updated_at = NOW() WHERE id = $1`, old.ID); err != nil {
		return fmt.Errorf("failed to retire category version: %v", err)
	}

	query := `INSERT INTO fee_categories (name, version, is_refundable, refund_percentage, tax_percentage)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at, updated_at`
	updated.Version = old.Version + 1
	if err := tx.QueryRow(query, updated.Name, updated.Version, updated.IsRefundable,
		updated.RefundPercentage, updated.TaxPercentage).
		Scan(&updated.ID, &updated.CreatedAt, &updated.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert category version: %v", err)
	}

	return tx.Commit()
}

// CreateFeeStructure inserts the structure and its items in one transaction.
// The partial unique index on {year, class, category} rejects duplicates.
func CreateFeeStructure(db *sql.DB, s *models.FeeStructure) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO fee_structures
				(academic_year_id, class_id, student_category, installment_count,
				 grace_period_days, late_fee_amount, late_fee_percentage,
				 start_due_date, installment_gap_days)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, created_at, updated_at`

	err = tx.QueryRow(query,
		s.AcademicYearID, s.ClassID, string(s.StudentCategory), s.InstallmentCount,
		s.GracePeriodDays, nullDecimal(s.LateFeeAmount), nullDecimal(s.LateFeePercentage),
		s.StartDueDate, s.InstallmentGapDays,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}

	for _, item := range s.Items {
		item.StructureID = s.ID
		err = tx.QueryRow(
			`INSERT INTO fee_items (structure_id, category_id, amount, cadence)
			 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			item.StructureID, item.CategoryID, item.Amount, string(item.Cadence),
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert fee item: %v", err)
		}
	}

	return tx.Commit()
}

// UpdateFeeStructure amends the structure's billing policy fields. Callers
// must have already verified the structure is not locked by assignments.
func UpdateFeeStructure(db *sql.DB, s *models.FeeStructure) error {
	_, err := db.Exec(
		`UPDATE fee_structures SET
			installment_count = $1, grace_period_days = $2,
			late_fee_amount = $3, late_fee_percentage = $4,
			start_due_date = $5, installment_gap_days = $6, updated_at = NOW()
		 WHERE id = $7`,
		s.InstallmentCount, s.GracePeriodDays,
		nullDecimal(s.LateFeeAmount), nullDecimal(s.LateFeePercentage),
		s.StartDueDate, s.InstallmentGapDays, s.ID,
	)
	return err
}

// ReplaceFeeStructureItems swaps the structure's item set. Callers must have
// already verified the structure is not locked by assignments.
func ReplaceFeeStructureItems(db *sql.DB, structureID string, items []*models.FeeItem) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fee_items WHERE structure_id = $1`, structureID); err != nil {
		return err
	}
	for _, item := range items {
		item.StructureID = structureID
		err = tx.QueryRow(
			`INSERT INTO fee_items (structure_id, category_id, amount, cadence)
			 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			structureID, item.CategoryID, item.Amount, string(item.Cadence),
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`UPDATE fee_structures SET updated_at = NOW() WHERE id = $1`, structureID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetFeeStructureByID loads a structure with its items and categories.
func GetFeeStructureByID(q DBTX, id string) (*models.FeeStructure, error) {
	s := &models.FeeStructure{}
	var lateAmt, latePct sql.NullString

	query := `SELECT id, academic_year_id, class_id, student_category, installment_count,
					 grace_period_days, late_fee_amount, late_fee_percentage,
					 start_due_date, installment_gap_days, created_at, updated_at
			  FROM fee_structures WHERE id = $1 AND deleted_at IS NULL`

	err := q.QueryRow(query, id).Scan(
		&s.ID, &s.AcademicYearID, &s.ClassID, &s.StudentCategory, &s.InstallmentCount,
		&s.GracePeriodDays, &lateAmt, &latePct,
		&s.StartDueDate, &s.InstallmentGapDays, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.LateFeeAmount, err = parseNullDecimal(lateAmt); err != nil {
		return nil, err
	}
	if s.LateFeePercentage, err = parseNullDecimal(latePct); err != nil {
		return nil, err
	}

	itemQuery := `SELECT i.id, i.structure_id, i.category_id, i.amount, i.cadence, i.created_at,
						 c.id, c.name, c.version, c.is_refundable, c.refund_percentage, c.tax_percentage
				  FROM fee_items i
				  JOIN fee_categories c ON c.id = i.category_id
				  WHERE i.structure_id = $1
				  ORDER BY i.created_at`

	rows, err := q.Query(itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.FeeItem{Category: &models.FeeCategory{}}
		if err := rows.Scan(
			&item.ID, &item.StructureID, &item.CategoryID, &item.Amount, &item.Cadence, &item.CreatedAt,
			&item.Category.ID, &item.Category.Name, &item.Category.Version, &item.Category.IsRefundable,
			&item.Category.RefundPercentage, &item.Category.TaxPercentage,
		); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return s, rows.Err()
}

// GetAllFeeStructures lists structures for an academic year (or all when empty).
func GetAllFeeStructures(db *sql.DB, academicYearID string) ([]*models.FeeStructure, error) {
	query := `SELECT id, academic_year_id, class_id, student_category, installment_count,
					 grace_period_days, late_fee_amount, late_fee_percentage,
					 start_due_date, installment_gap_days, created_at, updated_at
			  FROM fee_structures
			  WHERE deleted_at IS NULL AND ($1 = '' OR academic_year_id = $1::uuid)
			  ORDER BY created_at DESC`

	rows, err := db.Query(query, academicYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var structures []*models.FeeStructure
	for rows.Next() {
		s := &models.FeeStructure{}
		var lateAmt, latePct sql.NullString
		if err := rows.Scan(
			&s.ID, &s.AcademicYearID, &s.ClassID, &s.StudentCategory, &s.InstallmentCount,
			&s.GracePeriodDays, &lateAmt, &latePct,
			&s.StartDueDate, &s.InstallmentGapDays, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if s.LateFeeAmount, err = parseNullDecimal(lateAmt); err != nil {
			return nil, err
		}
		if s.LateFeePercentage, err = parseNullDecimal(latePct); err != nil {
			return nil, err
		}
		structures = append(structures, s)
	}
	return structures, rows.Err()
}

// StructureHasAssignments reports whether any student is already assigned.
func StructureHasAssignments(q DBTX, structureID string) (bool, error) {
	var exists bool
	err := q.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM student_fee_assignments WHERE structure_id = $1)`,
		structureID,
	).Scan(&exists)
	return exists, err
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}

func parseNullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
