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
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
)

type mockModuleRepo struct {
	modules    map[string]models.Module
	references map[string]int
	deleted    []string
}

func (m *mockModuleRepo) List(ctx context.Context) ([]models.Module, error) {
	list := make([]models.Module, 0, len(m.modules))
	for _, mod := range m.modules {
		list = append(list, mod)
	}
	return list, nil
}

func (m *mockModuleRepo) FindByCode(ctx context.Context, code string) (*models.Module, error) {
	if mod, ok := m.modules[code]; ok {
		return &mod, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockModuleRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := m.modules[code]
	return ok, nil
}

func (m *mockModuleRepo) Create(ctx context.Context, module *models.Module) error {
	if m.modules == nil {
		m.modules = make(map[string]models.Module)
	}
	m.modules[module.Code] = *module
	return nil
}

func (m *mockModuleRepo) Delete(ctx context.Context, code string) error {
	m.deleted = append(m.deleted, code)
	delete(m.modules, code)
	return nil
}

func (m *mockModuleRepo) CountReferences(ctx context.Context, code string) (int, error) {
	return m.references[code], nil
}

func TestModuleServiceCreate(t *testing.T) {
	repo := &mockModuleRepo{}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	module, err := svc.Create(context.Background(), CreateModuleRequest{Code: "COMP0010", Name: "Software Engineering", MNC: true})
	require.NoError(t, err)
	assert.Equal(t, "COMP0010", module.Code)
	assert.True(t, module.MNC)
}

func TestModuleServiceCreateBlankCode(t *testing.T) {
	repo := &mockModuleRepo{}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateModuleRequest{Code: "   ", Name: "Ghost Module"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, repo.modules)
}

func TestModuleServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockModuleRepo{modules: map[string]models.Module{"COMP0010": {Code: "COMP0010", Name: "Software Engineering"}}}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateModuleRequest{Code: "COMP0010", Name: "Imposter"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Equal(t, "Software Engineering", repo.modules["COMP0010"].Name)
}

func TestModuleServiceCreateTrimsCode(t *testing.T) {
	repo := &mockModuleRepo{}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	module, err := svc.Create(context.Background(), CreateModuleRequest{Code: " COMP0010 ", Name: "Software Engineering"})
	require.NoError(t, err)
	assert.Equal(t, "COMP0010", module.Code)
}

func TestModuleServiceDeleteReferenced(t *testing.T) {
	repo := &mockModuleRepo{
		modules:    map[string]models.Module{"COMP0010": {Code: "COMP0010"}},
		references: map[string]int{"COMP0010": 3},
	}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "COMP0010")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Empty(t, repo.deleted)
}

func TestModuleServiceDeleteUnreferenced(t *testing.T) {
	repo := &mockModuleRepo{modules: map[string]models.Module{"COMP0010": {Code: "COMP0010"}}}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "COMP0010")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "COMP0010")
}

func TestModuleServiceGetMissing(t *testing.T) {
	repo := &mockModuleRepo{}
	svc := NewModuleService(repo, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "NOPE0001")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
