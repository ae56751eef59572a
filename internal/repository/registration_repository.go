package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

// RegistrationRepository handles persistence of registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// List returns all registrations with student and module context.
func (r *RegistrationRepository) List(ctx context.Context) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.student_id, r.module_code, r.registered_at,
        s.username AS student_username, m.name AS module_name
        FROM registrations r
        JOIN students s ON s.id = r.student_id
        JOIN modules m ON m.code = r.module_code
        ORDER BY r.id ASC`
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// ListByStudent returns a student's registrations.
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Registration, error) {
	const query = `SELECT id, student_id, module_code, registered_at FROM registrations WHERE student_id = $1 ORDER BY registered_at ASC`
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, studentID); err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return registrations, nil
}

// Exists checks for a registration on the (student, module) pair.
func (r *RegistrationRepository) Exists(ctx context.Context, studentID int64, moduleCode string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM registrations WHERE student_id = $1 AND module_code = $2 LIMIT 1", studentID, moduleCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// Create inserts a registration. The duplicate check runs inside the same
// transaction as the insert so concurrent requests for the same pair cannot
// both pass it; the unique index backs this up and a violation maps to
// ErrDuplicateRegistration as well.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create registration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.GetContext(ctx, &exists, "SELECT 1 FROM registrations WHERE student_id = $1 AND module_code = $2 LIMIT 1", registration.StudentID, registration.ModuleCode)
	if err == nil {
		return ErrDuplicateRegistration
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check registration: %w", err)
	}

	const insert = `INSERT INTO registrations (student_id, module_code, registered_at) VALUES ($1, $2, $3) RETURNING id`
	if err := tx.GetContext(ctx, &registration.ID, insert, registration.StudentID, registration.ModuleCode, registration.RegisteredAt); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("commit create registration: %w", err)
	}
	return nil
}
