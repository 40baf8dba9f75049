package database

import (
	"database/sql"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// Auth and read-only reference lookups. The master-data system owns these
// tables; billing only reads them.

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password, first_name, last_name, is_active, created_at, updated_at
			  FROM users WHERE email = $1 AND is_active = true`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserRoles(db *sql.DB, userID string) ([]*models.Role, error) {
	query := `
		SELECT r.id, r.name
		FROM roles r
		JOIN user_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
	`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, nil
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	_, err := db.Exec(`UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`,
		hashedPassword, userID)
	return err
}

// CreateUser inserts an active user with an already-hashed password.
func CreateUser(db *sql.DB, user *models.User) error {
	query := `INSERT INTO users (email, password, first_name, last_name)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, user.Email, user.Password, user.FirstName, user.LastName).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// EnsureRole returns the role id for a name, creating the role if missing.
func EnsureRole(db *sql.DB, name string) (string, error) {
	var id string
	err := db.QueryRow(`SELECT id FROM roles WHERE name = $1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		err = db.QueryRow(`INSERT INTO roles (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	}
	return id, err
}

// AssignRole links a user to a role.
func AssignRole(db *sql.DB, userID, roleID string) error {
	_, err := db.Exec(
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID)
	return err
}

func GetStudentByID(q DBTX, studentID string) (*models.Student, error) {
	s := &models.Student{}
	query := `SELECT id, student_id, first_name, last_name, class_id, category, is_active
			  FROM students WHERE id = $1 AND deleted_at IS NULL`

	err := q.QueryRow(query, studentID).Scan(
		&s.ID, &s.StudentID, &s.FirstName, &s.LastName, &s.ClassID, &s.Category, &s.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func GetAcademicYearByID(q DBTX, id string) (*models.AcademicYear, error) {
	y := &models.AcademicYear{}
	query := `SELECT id, name, start_date, end_date, is_current, is_active
			  FROM academic_years WHERE id = $1 AND deleted_at IS NULL`

	err := q.QueryRow(query, id).Scan(
		&y.ID, &y.Name, &y.StartDate, &y.EndDate, &y.IsCurrent, &y.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return y, nil
}
