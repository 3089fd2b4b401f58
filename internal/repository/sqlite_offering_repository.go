package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/offering-registry/internal/domain"
)

type sqliteOfferingRepository struct {
	db *sql.DB
}

// NewSQLiteOfferingRepository builds the sqlite-backed offering store.
func NewSQLiteOfferingRepository(db *sql.DB) OfferingStore {
	return &sqliteOfferingRepository{db: db}
}

func (r *sqliteOfferingRepository) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &sqliteOfferingTx{tx: tx}); err != nil {
		rbErr := tx.Rollback()
		if errors.Is(rbErr, sql.ErrTxDone) {
			// database/sql already rolled back on context cancellation.
			rbErr = nil
		}
		return rollbackErr(err, rbErr)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *sqliteOfferingRepository) ListByCourse(ctx context.Context, courseID string) ([]domain.CourseOffering, error) {
	const query = `
        SELECT offering_id, course_id, program_id, semester, basket_id, offering_department, status, created_at
        FROM course_offerings WHERE course_id=? ORDER BY offering_id ASC`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CourseOffering{}
	for rows.Next() {
		var (
			o         domain.CourseOffering
			status    string
			createdAt string
		)
		if err := rows.Scan(
			&o.ID,
			&o.CourseID,
			&o.ProgramID,
			&o.Semester,
			&o.BasketID,
			&o.OfferingDepartment,
			&status,
			&createdAt,
		); err != nil {
			return nil, err
		}
		o.Status = domain.OfferingStatus(status)
		o.CreatedAt = parseSQLiteTime(createdAt)
		result = append(result, o)
	}
	return result, rows.Err()
}

type sqliteOfferingTx struct {
	tx *sql.Tx
}

func (t *sqliteOfferingTx) Insert(ctx context.Context, o *domain.CourseOffering) error {
	const query = `
        INSERT INTO course_offerings (course_id, program_id, semester, basket_id, offering_department, status)
        VALUES (?,?,?,?,?,?)
        RETURNING offering_id`
	var basketID any
	if o.BasketID != nil {
		basketID = *o.BasketID
	}
	if err := t.tx.QueryRowContext(ctx, query,
		o.CourseID,
		o.ProgramID,
		o.Semester,
		basketID,
		o.OfferingDepartment,
		string(o.Status),
	).Scan(&o.ID); err != nil {
		return err
	}
	o.CreatedAt = time.Now().UTC()
	return nil
}

func (t *sqliteOfferingTx) ExistsActive(ctx context.Context, courseID, programID string, semester int) (bool, error) {
	const query = `
        SELECT EXISTS(SELECT 1 FROM course_offerings
        WHERE course_id=? AND program_id=? AND semester=? AND status=?)`
	var exists bool
	err := t.tx.QueryRowContext(ctx, query, courseID, programID, semester, string(domain.OfferingStatusActive)).Scan(&exists)
	return exists, err
}
