package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

// GradeRepository handles persistence of grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns all grades ordered by id.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	const query = `SELECT id, student_id, module_code, score, created_at, updated_at FROM grades ORDER BY id ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByID returns a grade by its ID.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	const query = `SELECT id, student_id, module_code, score, created_at, updated_at FROM grades WHERE id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// FindByStudentAndModule returns the grade recorded for the pair, if any.
func (r *GradeRepository) FindByStudentAndModule(ctx context.Context, studentID int64, moduleCode string) (*models.Grade, error) {
	const query = `SELECT id, student_id, module_code, score, created_at, updated_at FROM grades WHERE student_id = $1 AND module_code = $2`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID, moduleCode); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ScoresByStudent returns all scores currently recorded for a student.
func (r *GradeRepository) ScoresByStudent(ctx context.Context, studentID int64) ([]int, error) {
	const query = `SELECT score FROM grades WHERE student_id = $1`
	var scores []int
	if err := r.db.SelectContext(ctx, &scores, query, studentID); err != nil {
		return nil, fmt.Errorf("list student scores: %w", err)
	}
	return scores, nil
}

// TranscriptRows returns one row per registered module with the grade score
// joined in when present.
func (r *GradeRepository) TranscriptRows(ctx context.Context, studentID int64) ([]models.TranscriptRow, error) {
	const query = `SELECT r.module_code, m.name AS module_name, m.mnc, g.score
        FROM registrations r
        JOIN modules m ON m.code = r.module_code
        LEFT JOIN grades g ON g.student_id = r.student_id AND g.module_code = r.module_code
        WHERE r.student_id = $1
        ORDER BY r.module_code ASC`
	var rows []models.TranscriptRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("transcript rows: %w", err)
	}
	return rows, nil
}

// Create inserts a grade. The registration gate is re-checked inside the
// insert transaction: without it two concurrent writes could both observe
// "registered" against a registration that a concurrent student delete is
// removing.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create grade: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var registered int
	err = tx.GetContext(ctx, &registered, "SELECT 1 FROM registrations WHERE student_id = $1 AND module_code = $2 LIMIT 1", grade.StudentID, grade.ModuleCode)
	if err == sql.ErrNoRows {
		return ErrNotRegistered
	}
	if err != nil {
		return fmt.Errorf("check registration: %w", err)
	}

	const insert = `INSERT INTO grades (student_id, module_code, score, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.GetContext(ctx, &grade.ID, insert, grade.StudentID, grade.ModuleCode, grade.Score, grade.CreatedAt, grade.UpdatedAt); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateGrade
		}
		return fmt.Errorf("create grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateGrade
		}
		return fmt.Errorf("commit create grade: %w", err)
	}
	return nil
}

// UpdateScore sets a new score on an existing grade.
func (r *GradeRepository) UpdateScore(ctx context.Context, id int64, score int) error {
	const query = `UPDATE grades SET score = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score, time.Now().UTC()); err != nil {
		return fmt.Errorf("update grade score: %w", err)
	}
	return nil
}

// Delete removes a grade record.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
