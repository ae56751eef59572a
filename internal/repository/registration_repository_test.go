package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

func newRegistrationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRegistrationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "module_code", "registered_at", "student_username", "module_name"}).
		AddRow(1, 1, "COMP0010", time.Now(), "asmith", "Software Engineering")
	mock.ExpectQuery("SELECT r.id, r.student_id, r.module_code, r.registered_at").
		WillReturnRows(rows)

	registrations, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, registrations, 1)
	assert.Equal(t, "asmith", registrations[0].StudentUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectQuery("INSERT INTO registrations").
		WithArgs(int64(1), "COMP0010", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	registration := &models.Registration{StudentID: 1, ModuleCode: "COMP0010"}
	err := repo.Create(context.Background(), registration)
	require.NoError(t, err)
	assert.Equal(t, int64(7), registration.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Registration{StudentID: 1, ModuleCode: "COMP0010"})
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRegistrationMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT 1 FROM registrations WHERE student_id = \\$1 AND module_code = \\$2 LIMIT 1").
		WithArgs(int64(1), "COMP0010").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), 1, "COMP0010")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
