package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/offering-registry/internal/config"
	"github.com/spec-kit/offering-registry/internal/domain"
	"github.com/spec-kit/offering-registry/internal/persistence"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	store, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.Migrate(ctx))

	seed := []string{
		`INSERT INTO departments (dept_code, dept_name) VALUES ('MA', 'Mathematics'), ('CS', 'Computer Science')`,
		`INSERT INTO programs (program_id, program_name) VALUES ('P2', 'BSc Physics'), ('P1', 'BSc Computing'), ('P3', 'MSc Data Science')`,
		`INSERT INTO courses (course_id, course_name) VALUES ('C2', 'Linear Algebra'), ('C1', 'Algorithms')`,
		`INSERT INTO course_baskets (basket_id, basket_name) VALUES ('B1', 'Open Elective')`,
	}
	for _, stmt := range seed {
		_, err := store.DB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return store.DB
}

func TestSQLiteReferenceRepository_SortedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteReferenceRepository(setupTestDB(t))

	depts, err := repo.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Department{{Code: "CS", Name: "Computer Science"}, {Code: "MA", Name: "Mathematics"}}, depts)

	progs, err := repo.ListPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, progs, 3)
	assert.Equal(t, "P1", progs[0].ID)
	assert.Equal(t, "P2", progs[1].ID)
	assert.Equal(t, "P3", progs[2].ID)

	courses, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Course{{ID: "C1", Name: "Algorithms"}, {ID: "C2", Name: "Linear Algebra"}}, courses)

	baskets, err := repo.ListBaskets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Basket{{ID: "B1", Name: "Open Elective"}}, baskets)
}

func newOffering(programID string) *domain.CourseOffering {
	return &domain.CourseOffering{
		CourseID:           "C1",
		ProgramID:          programID,
		Semester:           3,
		OfferingDepartment: "CS",
		Status:             domain.OfferingStatusActive,
	}
}

func TestSQLiteOfferingStore_CommitsAllRows(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))
	basketID := "B1"

	err := store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
		for _, p := range []string{"P1", "P2"} {
			o := newOffering(p)
			o.BasketID = &basketID
			if err := tx.Insert(ctx, o); err != nil {
				return err
			}
			assert.NotZero(t, o.ID)
		}
		return nil
	})
	require.NoError(t, err)

	rows, err := store.ListByCourse(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotNil(t, row.BasketID)
		assert.Equal(t, "B1", *row.BasketID)
		assert.Equal(t, domain.OfferingStatusActive, row.Status)
		assert.False(t, row.CreatedAt.IsZero())
	}
}

func TestSQLiteOfferingStore_ForeignKeyFailureRollsBackEarlierInserts(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))

	err := store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
		if err := tx.Insert(ctx, newOffering("P1")); err != nil {
			return err
		}
		return tx.Insert(ctx, newOffering("INVALID_ID"))
	})
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	rows, err := store.ListByCourse(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteOfferingStore_CallbackErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
		require.NoError(t, tx.Insert(ctx, newOffering("P1")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsConstraintViolation(err))

	rows, err := store.ListByCourse(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteOfferingStore_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))

	assert.Panics(t, func() {
		_ = store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
			require.NoError(t, tx.Insert(ctx, newOffering("P1")))
			panic("mid-transaction")
		})
	})

	rows, err := store.ListByCourse(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteOfferingStore_ExistsActive(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
		exists, err := tx.ExistsActive(ctx, "C1", "P1", 3)
		require.NoError(t, err)
		assert.False(t, exists)

		if err := tx.Insert(ctx, newOffering("P1")); err != nil {
			return err
		}

		exists, err = tx.ExistsActive(ctx, "C1", "P1", 3)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = tx.ExistsActive(ctx, "C1", "P1", 4)
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	}))
}

func TestSQLiteOfferingStore_SemesterCheckConstraint(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteOfferingRepository(setupTestDB(t))

	err := store.WithinTx(ctx, func(ctx context.Context, tx OfferingTx) error {
		o := newOffering("P1")
		o.Semester = 9
		return tx.Insert(ctx, o)
	})
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestIsConstraintViolation_Nil(t *testing.T) {
	assert.False(t, IsConstraintViolation(nil))
	assert.False(t, IsConstraintViolation(errors.New("plain")))
}
