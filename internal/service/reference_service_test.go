package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/offering-registry/internal/domain"
	"github.com/spec-kit/offering-registry/internal/observability"
	"github.com/spec-kit/offering-registry/internal/repository"
	apperrors "github.com/spec-kit/offering-registry/pkg/util"
)

type fakeReferenceRepo struct {
	calls   atomic.Int32
	err     error
	depts   []domain.Department
	progs   []domain.Program
	courses []domain.Course
	baskets []domain.Basket
}

func (r *fakeReferenceRepo) ListDepartments(context.Context) ([]domain.Department, error) {
	r.calls.Add(1)
	return r.depts, r.err
}

func (r *fakeReferenceRepo) ListPrograms(context.Context) ([]domain.Program, error) {
	r.calls.Add(1)
	return r.progs, r.err
}

func (r *fakeReferenceRepo) ListCourses(context.Context) ([]domain.Course, error) {
	r.calls.Add(1)
	return r.courses, r.err
}

func (r *fakeReferenceRepo) ListBaskets(context.Context) ([]domain.Basket, error) {
	r.calls.Add(1)
	return r.baskets, r.err
}

var _ repository.ReferenceRepository = (*fakeReferenceRepo)(nil)

type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Enabled() bool { return true }

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return false, c.readErr
	}
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	c.ttls[key] = ttl
	return nil
}

func seededRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		depts: []domain.Department{{Code: "CS", Name: "Computer Science"}, {Code: "MA", Name: "Mathematics"}},
		progs: []domain.Program{
			{ID: "P1", Name: "BSc Computing"},
			{ID: "P3", Name: "MSc Data Science"},
			{ID: "P4", Name: "MA Straße Planning"},
		},
		courses: []domain.Course{{ID: "C1", Name: "Algorithms"}, {ID: "C2", Name: "Linear Algebra"}},
		baskets: []domain.Basket{{ID: "B1", Name: "Open Elective"}},
	}
}

func TestReferenceService_Catalog(t *testing.T) {
	repo := seededRepo()
	svc := NewReferenceService(ReferenceDependencies{Repo: repo})

	catalog, err := svc.Catalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, repo.depts, catalog.Departments)
	assert.Equal(t, repo.progs, catalog.Programs)
	assert.Equal(t, repo.courses, catalog.Courses)
	assert.Equal(t, repo.baskets, catalog.Baskets)
	assert.Equal(t, int32(4), repo.calls.Load())
}

func TestReferenceService_StoreFailureIsStorageError(t *testing.T) {
	repo := seededRepo()
	repo.err = errors.New("no such table: programs")
	svc := NewReferenceService(ReferenceDependencies{Repo: repo})

	_, err := svc.Catalog(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStorageError))
	assert.Contains(t, err.Error(), "no such table")
}

func TestReferenceService_CachesLists(t *testing.T) {
	repo := seededRepo()
	cache := newMemoryCache()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := NewReferenceService(ReferenceDependencies{Repo: repo, Cache: cache, CacheTTL: time.Minute, Metrics: metrics})

	first, err := svc.ListPrograms(context.Background())
	require.NoError(t, err)
	second, err := svc.ListPrograms(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.calls.Load())
	assert.Equal(t, time.Minute, cache.ttls["catalog:programs"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CatalogCacheTotal.WithLabelValues("programs", observability.CacheMiss)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CatalogCacheTotal.WithLabelValues("programs", observability.CacheHit)))
}

func TestReferenceService_CacheReadFailureFallsThrough(t *testing.T) {
	repo := seededRepo()
	cache := newMemoryCache()
	cache.readErr = errors.New("connection refused")
	svc := NewReferenceService(ReferenceDependencies{Repo: repo, Cache: cache, CacheTTL: time.Minute})

	courses, err := svc.ListCourses(context.Background())

	require.NoError(t, err)
	assert.Equal(t, repo.courses, courses)
}

func TestReferenceService_ZeroTTLSkipsCache(t *testing.T) {
	repo := seededRepo()
	cache := newMemoryCache()
	svc := NewReferenceService(ReferenceDependencies{Repo: repo, Cache: cache})

	_, err := svc.ListBaskets(context.Background())
	require.NoError(t, err)
	_, err = svc.ListBaskets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), repo.calls.Load())
	assert.Empty(t, cache.items)
}

func TestReferenceService_FilterPrograms(t *testing.T) {
	svc := NewReferenceService(ReferenceDependencies{Repo: seededRepo()})
	ctx := context.Background()

	all, err := svc.FilterPrograms(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := svc.FilterPrograms(ctx, "DATA")
	require.NoError(t, err)
	assert.Equal(t, []domain.Program{{ID: "P3", Name: "MSc Data Science"}}, matched)

	folded, err := svc.FilterPrograms(ctx, "strasse")
	require.NoError(t, err)
	require.Len(t, folded, 1)
	assert.Equal(t, "P4", folded[0].ID)

	none, err := svc.FilterPrograms(ctx, "chemistry")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReferenceService_ResolveCourse(t *testing.T) {
	svc := NewReferenceService(ReferenceDependencies{Repo: seededRepo()})
	ctx := context.Background()

	id, err := svc.ResolveCourse(ctx, "Linear Algebra")
	require.NoError(t, err)
	assert.Equal(t, "C2", id)

	id, err = svc.ResolveCourse(ctx, "linear algebra")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = svc.ResolveCourse(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, id)
}
