package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ucl-grp21/student-records-api/internal/models"
	"github.com/ucl-grp21/student-records-api/internal/repository"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
)

type registrationRepository interface {
	List(ctx context.Context) ([]models.RegistrationDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Registration, error)
	Exists(ctx context.Context, studentID int64, moduleCode string) (bool, error)
	Create(ctx context.Context, registration *models.Registration) error
}

type studentReader interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

type moduleReader interface {
	FindByCode(ctx context.Context, code string) (*models.Module, error)
}

// RegisterModuleRequest describes registration creation payload.
type RegisterModuleRequest struct {
	StudentID  int64  `json:"student_id" validate:"required,gt=0"`
	ModuleCode string `json:"module_code" validate:"required"`
}

// RegistrationService enforces the at-most-one-registration invariant.
type RegistrationService struct {
	repo      registrationRepository
	students  studentReader
	modules   moduleReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(repo registrationRepository, students studentReader, modules moduleReader, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, students: students, modules: modules, validator: validate, logger: logger}
}

// List returns all registrations.
func (s *RegistrationService) List(ctx context.Context) ([]models.RegistrationDetail, error) {
	registrations, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, nil
}

// ListByStudent returns the registrations held by one student.
func (s *RegistrationService) ListByStudent(ctx context.Context, studentID int64) ([]models.Registration, error) {
	exists, err := s.students.ExistsByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	registrations, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student registrations")
	}
	return registrations, nil
}

// Register enrolls a student in a module. A second registration for the
// same pair is rejected with a conflict.
func (s *RegistrationService) Register(ctx context.Context, req RegisterModuleRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	exists, err := s.students.ExistsByID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if _, err := s.modules.FindByCode(ctx, req.ModuleCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	registration := &models.Registration{StudentID: req.StudentID, ModuleCode: req.ModuleCode}
	if err := s.repo.Create(ctx, registration); err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already registered for this module")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	return registration, nil
}
