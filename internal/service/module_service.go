package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ucl-grp21/student-records-api/internal/models"
	"github.com/ucl-grp21/student-records-api/internal/repository"
	appErrors "github.com/ucl-grp21/student-records-api/pkg/errors"
)

type moduleRepository interface {
	List(ctx context.Context) ([]models.Module, error)
	FindByCode(ctx context.Context, code string) (*models.Module, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, code string) error
	CountReferences(ctx context.Context, code string) (int, error)
}

const moduleCatalogueKey = "modules:catalogue"

// CreateModuleRequest holds payload for creating modules.
type CreateModuleRequest struct {
	Code string `json:"code"`
	Name string `json:"name" validate:"required"`
	MNC  bool   `json:"mnc"`
}

// ModuleService handles module catalogue use-cases. The catalogue changes
// rarely, so reads go through an optional Redis cache invalidated on writes.
type ModuleService struct {
	repo      moduleRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs the module service. cache may be nil.
func NewModuleService(repo moduleRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ModuleService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns the module catalogue, served from cache when possible.
func (s *ModuleService) List(ctx context.Context) ([]models.Module, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, moduleCatalogueKey).Bytes()
		if err == nil {
			var modules []models.Module
			if jsonErr := json.Unmarshal(raw, &modules); jsonErr == nil {
				return modules, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("module cache read failed", zap.Error(err))
		}
	}

	modules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(modules); err == nil {
			if err := s.cache.Set(ctx, moduleCatalogueKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("module cache write failed", zap.Error(err))
			}
		}
	}
	return modules, nil
}

// Get returns a module by code.
func (s *ModuleService) Get(ctx context.Context, code string) (*models.Module, error) {
	module, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	return module, nil
}

// Create adds a module to the catalogue. The code is the natural key and
// must be non-blank and unused.
func (s *ModuleService) Create(ctx context.Context, req CreateModuleRequest) (*models.Module, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "module code must not be blank")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate module code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "module code already exists")
	}
	module := &models.Module{Code: code, Name: req.Name, MNC: req.MNC}
	if err := s.repo.Create(ctx, module); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "module code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	s.invalidate(ctx)
	return module, nil
}

// Delete removes a module. Modules still referenced by registrations or
// grades are protected; deletion never cascades.
func (s *ModuleService) Delete(ctx context.Context, code string) error {
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	refs, err := s.repo.CountReferences(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "module is referenced by registrations or grades")
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ModuleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, moduleCatalogueKey).Err(); err != nil {
		s.logger.Warn("module cache invalidation failed", zap.Error(err))
	}
}
