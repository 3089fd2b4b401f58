package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/offering-registry/internal/domain"
)

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository builds the postgres-backed reference repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, listDepartmentsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, department)
}

func (r *referenceRepository) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	rows, err := r.pool.Query(ctx, listProgramsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, program)
}

func (r *referenceRepository) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx, listCoursesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, course)
}

func (r *referenceRepository) ListBaskets(ctx context.Context) ([]domain.Basket, error) {
	rows, err := r.pool.Query(ctx, listBasketsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPairs(rows, basket)
}
