package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/offering-registry/internal/domain"
)

type sqliteReferenceRepository struct {
	db *sql.DB
}

// NewSQLiteReferenceRepository builds the sqlite-backed reference repository.
func NewSQLiteReferenceRepository(db *sql.DB) ReferenceRepository {
	return &sqliteReferenceRepository{db: db}
}

func (r *sqliteReferenceRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, listDepartmentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, department)
}

func (r *sqliteReferenceRepository) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	rows, err := r.db.QueryContext(ctx, listProgramsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, program)
}

func (r *sqliteReferenceRepository) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, listCoursesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, course)
}

func (r *sqliteReferenceRepository) ListBaskets(ctx context.Context) ([]domain.Basket, error) {
	rows, err := r.db.QueryContext(ctx, listBasketsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, basket)
}
