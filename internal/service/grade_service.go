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

type gradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	FindByStudentAndModule(ctx context.Context, studentID int64, moduleCode string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	UpdateScore(ctx context.Context, id int64, score int) error
	Delete(ctx context.Context, id int64) error
}

const (
	minScore = 0
	maxScore = 100
)

// AddGradeRequest describes grade creation payload.
type AddGradeRequest struct {
	StudentID  int64  `json:"student_id" validate:"required,gt=0"`
	ModuleCode string `json:"module_code" validate:"required"`
	Score      int    `json:"score"`
}

// UpdateGradeRequest carries a replacement score.
type UpdateGradeRequest struct {
	Score int `json:"score"`
}

// GradeService enforces the registration gate and score policy. StrictCreate
// extends the [0,100] range check to grade creation; the update path always
// validates it.
type GradeService struct {
	repo         gradeRepository
	students     studentReader
	modules      moduleReader
	strictCreate bool
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepository, students studentReader, modules moduleReader, strictCreate bool, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, modules: modules, strictCreate: strictCreate, validator: validate, logger: logger}
}

// List returns all grades.
func (s *GradeService) List(ctx context.Context) ([]models.Grade, error) {
	grades, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Add records a grade for a registered (student, module) pair.
func (s *GradeService) Add(ctx context.Context, req AddGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if s.strictCreate && (req.Score < minScore || req.Score > maxScore) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and 100")
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

	grade := &models.Grade{StudentID: req.StudentID, ModuleCode: req.ModuleCode, Score: req.Score}
	if err := s.repo.Create(ctx, grade); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return nil, appErrors.Clone(appErrors.ErrNotRegistered, "student must be registered for the module before receiving a grade")
		}
		if errors.Is(err, repository.ErrDuplicateGrade) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade already recorded for this module")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// UpdateScore replaces the score on an existing grade. The range check is
// unconditional here.
func (s *GradeService) UpdateScore(ctx context.Context, id int64, req UpdateGradeRequest) (*models.Grade, error) {
	if req.Score < minScore || req.Score > maxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and 100")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if err := s.repo.UpdateScore(ctx, id, req.Score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	grade.Score = req.Score
	return grade, nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// GetForModule returns the grade a student holds in a module.
func (s *GradeService) GetForModule(ctx context.Context, studentID int64, moduleCode string) (*models.Grade, error) {
	exists, err := s.students.ExistsByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if _, err := s.modules.FindByCode(ctx, moduleCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	grade, err := s.repo.FindByStudentAndModule(ctx, studentID, moduleCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.New("GRADE_NOT_FOUND", appErrors.ErrNotFound.Status, "no grade recorded for this module")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}
