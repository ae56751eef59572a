package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucl-grp21/student-records-api/internal/models"
	"github.com/ucl-grp21/student-records-api/internal/repository"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
)

type mockGradeRepo struct {
	grades     map[int64]models.Grade
	registered map[registrationKey]bool
	nextID     int64
	deleted    []int64
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.Grade, error) {
	list := make([]models.Grade, 0, len(m.grades))
	for _, g := range m.grades {
		list = append(list, g)
	}
	return list, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) FindByStudentAndModule(ctx context.Context, studentID int64, moduleCode string) (*models.Grade, error) {
	for _, g := range m.grades {
		if g.StudentID == studentID && g.ModuleCode == moduleCode {
			return &g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if !m.registered[registrationKey{grade.StudentID, grade.ModuleCode}] {
		return repository.ErrNotRegistered
	}
	for _, g := range m.grades {
		if g.StudentID == grade.StudentID && g.ModuleCode == grade.ModuleCode {
			return repository.ErrDuplicateGrade
		}
	}
	if m.grades == nil {
		m.grades = make(map[int64]models.Grade)
	}
	m.nextID++
	grade.ID = m.nextID
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) UpdateScore(ctx context.Context, id int64, score int) error {
	if g, ok := m.grades[id]; ok {
		g.Score = score
		m.grades[id] = g
	}
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.grades, id)
	return nil
}

func newGradeFixture(registered bool) (*mockGradeRepo, *mockStudentGate, *mockModuleCatalogue) {
	repo := &mockGradeRepo{registered: map[registrationKey]bool{}}
	if registered {
		repo.registered[registrationKey{1, "COMP0010"}] = true
	}
	students := &mockStudentGate{known: map[int64]models.Student{1: {ID: 1}}}
	modules := &mockModuleCatalogue{known: map[string]models.Module{"COMP0010": {Code: "COMP0010"}}}
	return repo, students, modules
}

func TestGradeServiceAdd(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	grade, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	require.NoError(t, err)
	assert.NotZero(t, grade.ID)
	assert.Equal(t, 85, grade.Score)
}

func TestGradeServiceAddUnregistered(t *testing.T) {
	repo, students, modules := newGradeFixture(false)
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	_, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "NOT_REGISTERED", appErr.Code)
	assert.Empty(t, repo.grades)
}

func TestGradeServiceAddDuplicate(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	_, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 90})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Len(t, repo.grades, 1)
}

func TestGradeServiceAddScoreBounds(t *testing.T) {
	for _, score := range []int{0, 100} {
		repo, students, modules := newGradeFixture(true)
		svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

		grade, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: score})
		require.NoError(t, err)
		assert.Equal(t, score, grade.Score)
	}

	for _, score := range []int{-1, 101} {
		repo, students, modules := newGradeFixture(true)
		svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

		_, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: score})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
		assert.Empty(t, repo.grades)
	}
}

func TestGradeServiceAddLenientCreate(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	svc := NewGradeService(repo, students, modules, false, validator.New(), zap.NewNop())

	grade, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 120})
	require.NoError(t, err)
	assert.Equal(t, 120, grade.Score)
}

func TestGradeServiceAddUnknownStudent(t *testing.T) {
	repo, _, modules := newGradeFixture(true)
	svc := NewGradeService(repo, &mockStudentGate{}, modules, true, validator.New(), zap.NewNop())

	_, err := svc.Add(context.Background(), AddGradeRequest{StudentID: 1, ModuleCode: "COMP0010", Score: 85})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestGradeServiceUpdateScore(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	repo.grades = map[int64]models.Grade{5: {ID: 5, StudentID: 1, ModuleCode: "COMP0010", Score: 40}}
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	grade, err := svc.UpdateScore(context.Background(), 5, UpdateGradeRequest{Score: 72})
	require.NoError(t, err)
	assert.Equal(t, 72, grade.Score)
	assert.Equal(t, 72, repo.grades[5].Score)
}

func TestGradeServiceUpdateScoreOutOfRange(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	repo.grades = map[int64]models.Grade{5: {ID: 5, StudentID: 1, ModuleCode: "COMP0010", Score: 40}}
	// Range check applies on update even when strict create is off.
	svc := NewGradeService(repo, students, modules, false, validator.New(), zap.NewNop())

	_, err := svc.UpdateScore(context.Background(), 5, UpdateGradeRequest{Score: 101})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Equal(t, 40, repo.grades[5].Score)
}

func TestGradeServiceUpdateScoreMissing(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	_, err := svc.UpdateScore(context.Background(), 404, UpdateGradeRequest{Score: 50})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestGradeServiceDelete(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	repo.grades = map[int64]models.Grade{5: {ID: 5, StudentID: 1, ModuleCode: "COMP0010", Score: 40}}
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.Contains(t, repo.deleted, int64(5))

	err := svc.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestGradeServiceGetForModule(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	repo.grades = map[int64]models.Grade{5: {ID: 5, StudentID: 1, ModuleCode: "COMP0010", Score: 68}}
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	grade, err := svc.GetForModule(context.Background(), 1, "COMP0010")
	require.NoError(t, err)
	assert.Equal(t, 68, grade.Score)
}

func TestGradeServiceGetForModuleNoGrade(t *testing.T) {
	repo, students, modules := newGradeFixture(true)
	svc := NewGradeService(repo, students, modules, true, validator.New(), zap.NewNop())

	_, err := svc.GetForModule(context.Background(), 1, "COMP0010")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "GRADE_NOT_FOUND", appErr.Code)
}
