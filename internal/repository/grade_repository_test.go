package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

func newGradeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(1), "COMP0010", 85, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	grade := &models.Grade{StudentID: 1, ModuleCode: "COMP0010", Score: 85}
	err := repo.Create(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, int64(3), grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateUnregistered(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Grade{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(1), "COMP0010", 85, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Grade{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	assert.ErrorIs(t, err, ErrDuplicateGrade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryScoresByStudent(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("SELECT score FROM grades WHERE student_id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(70).AddRow(85))

	scores, err := repo.ScoresByStudent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{70, 85}, scores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryTranscriptRows(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"module_code", "module_name", "mnc", "score"}).
		AddRow("COMP0010", "Software Engineering", true, 85).
		AddRow("COMP0016", "Systems Engineering", false, nil)
	mock.ExpectQuery("SELECT r.module_code, m.name AS module_name, m.mnc, g.score").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	transcript, err := repo.TranscriptRows(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.NotNil(t, transcript[0].Score)
	assert.Equal(t, 85, *transcript[0].Score)
	assert.Nil(t, transcript[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdateScore(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("UPDATE grades SET score = \\$2, updated_at = \\$3 WHERE id = \\$1").
		WithArgs(int64(3), 90, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateScore(context.Background(), 3, 90)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByStudentAndModule(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "module_code", "score", "created_at", "updated_at"}).
		AddRow(3, 1, "COMP0010", 85, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id, module_code, score, created_at, updated_at FROM grades WHERE student_id = \\$1 AND module_code = \\$2").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(rows)

	grade, err := repo.FindByStudentAndModule(context.Background(), 1, "COMP0010")
	require.NoError(t, err)
	assert.Equal(t, 85, grade.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}
