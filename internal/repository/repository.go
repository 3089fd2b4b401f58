package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/spec-kit/offering-registry/internal/domain"
)

// ReferenceRepository reads the lookup tables backing the offering form.
// Every list is ordered by display name ascending.
type ReferenceRepository interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	ListBaskets(ctx context.Context) ([]domain.Basket, error)
}

// OfferingTx exposes the writes allowed inside one registration transaction.
type OfferingTx interface {
	Insert(ctx context.Context, offering *domain.CourseOffering) error
	ExistsActive(ctx context.Context, courseID, programID string, semester int) (bool, error)
}

// TxFunc runs inside a transaction. A non-nil return rolls the transaction back.
type TxFunc func(ctx context.Context, tx OfferingTx) error

// OfferingStore opens transaction scopes for offering writes.
type OfferingStore interface {
	// WithinTx commits when fn returns nil and rolls back on error, panic or cancellation.
	WithinTx(ctx context.Context, fn TxFunc) error
	ListByCourse(ctx context.Context, courseID string) ([]domain.CourseOffering, error)
}

const (
	listDepartmentsQuery = `SELECT dept_code, dept_name FROM departments ORDER BY dept_name ASC`
	listProgramsQuery    = `SELECT program_id, program_name FROM programs ORDER BY program_name ASC`
	listCoursesQuery     = `SELECT course_id, course_name FROM courses ORDER BY course_name ASC`
	listBasketsQuery     = `SELECT basket_id, basket_name FROM course_baskets ORDER BY basket_name ASC`
)

// rowScanner is satisfied by both pgx.Rows and *sql.Rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectPairs[T any](rows rowScanner, build func(key, name string) T) ([]T, error) {
	result := []T{}
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, err
		}
		result = append(result, build(key, name))
	}
	return result, rows.Err()
}

func department(code, name string) domain.Department { return domain.Department{Code: code, Name: name} }
func program(id, name string) domain.Program          { return domain.Program{ID: id, Name: name} }
func course(id, name string) domain.Course            { return domain.Course{ID: id, Name: name} }
func basket(id, name string) domain.Basket            { return domain.Basket{ID: id, Name: name} }

// IsConstraintViolation reports whether err was raised by a schema constraint
// (foreign key, unique, check, not null) in either backend.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// rollbackErr folds a failed rollback into the original cause.
func rollbackErr(cause, rbErr error) error {
	if rbErr == nil {
		return cause
	}
	return fmt.Errorf("%w (rollback failed: %v)", cause, rbErr)
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseSQLiteTime(raw string) time.Time {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
