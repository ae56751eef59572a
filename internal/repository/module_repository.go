package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ucl-grp21/student-records-api/internal/models"
)

// ModuleRepository handles persistence for modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new repository instance.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns the whole module catalogue ordered by code.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	const query = `SELECT code, name, mnc, created_at, updated_at FROM modules ORDER BY code ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByCode returns a module by its code.
func (r *ModuleRepository) FindByCode(ctx context.Context, code string) (*models.Module, error) {
	const query = `SELECT code, name, mnc, created_at, updated_at FROM modules WHERE code = $1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, code); err != nil {
		return nil, err
	}
	return &module, nil
}

// ExistsByCode checks uniqueness of the module code.
func (r *ModuleRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM modules WHERE code = $1 LIMIT 1", code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check module code: %w", err)
	}
	return true, nil
}

// Create persists a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	now := time.Now().UTC()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now
	const query = `INSERT INTO modules (code, name, mnc, created_at, updated_at) VALUES (:code, :name, :mnc, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Delete removes a module record.
func (r *ModuleRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}

// CountReferences returns how many registrations and grades point at the
// module. A referenced module must not be deleted.
func (r *ModuleRepository) CountReferences(ctx context.Context, code string) (int, error) {
	const query = `SELECT (SELECT COUNT(*) FROM registrations WHERE module_code = $1) + (SELECT COUNT(*) FROM grades WHERE module_code = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, code); err != nil {
		return 0, fmt.Errorf("count module references: %w", err)
	}
	return count, nil
}
