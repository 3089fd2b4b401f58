package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/offering-registry/internal/domain"
)

type offeringRepository struct {
	pool *pgxpool.Pool
}

// NewOfferingRepository builds the postgres-backed offering store.
func NewOfferingRepository(pool *pgxpool.Pool) OfferingStore {
	return &offeringRepository{pool: pool}
}

func (r *offeringRepository) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(ctx, &offeringTx{tx: tx}); err != nil {
		return rollbackErr(err, tx.Rollback(context.WithoutCancel(ctx)))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *offeringRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.CourseOffering, error) {
	const query = `
        SELECT offering_id, course_id, program_id, semester, basket_id, offering_department, status, created_at
        FROM course_offerings WHERE course_id=$1 ORDER BY offering_id ASC`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CourseOffering{}
	for rows.Next() {
		var o domain.CourseOffering
		if err := rows.Scan(
			&o.ID,
			&o.CourseID,
			&o.ProgramID,
			&o.Semester,
			&o.BasketID,
			&o.OfferingDepartment,
			&o.Status,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

type offeringTx struct {
	tx pgx.Tx
}

func (t *offeringTx) Insert(ctx context.Context, o *domain.CourseOffering) error {
	const query = `
        INSERT INTO course_offerings (course_id, program_id, semester, basket_id, offering_department, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING offering_id, created_at`
	return t.tx.QueryRow(ctx, query,
		o.CourseID,
		o.ProgramID,
		o.Semester,
		o.BasketID,
		o.OfferingDepartment,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt)
}

func (t *offeringTx) ExistsActive(ctx context.Context, courseID, programID string, semester int) (bool, error) {
	const query = `
        SELECT EXISTS(SELECT 1 FROM course_offerings
        WHERE course_id=$1 AND program_id=$2 AND semester=$3 AND status=$4)`
	var exists bool
	err := t.tx.QueryRow(ctx, query, courseID, programID, semester, domain.OfferingStatusActive).Scan(&exists)
	return exists, err
}
