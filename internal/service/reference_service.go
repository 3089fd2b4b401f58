package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/spec-kit/offering-registry/internal/domain"
	"github.com/spec-kit/offering-registry/internal/observability"
	"github.com/spec-kit/offering-registry/internal/repository"
	apperrors "github.com/spec-kit/offering-registry/pkg/util"
)

// CatalogCache stores serialized reference lists. persistence.Redis satisfies it.
type CatalogCache interface {
	Enabled() bool
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const catalogKeyPrefix = "catalog:"

// ReferenceService serves the lookup lists that populate the offering form.
type ReferenceService struct {
	repo    repository.ReferenceRepository
	cache   CatalogCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// ReferenceDependencies bundles collaborators for the reference service.
type ReferenceDependencies struct {
	Repo     repository.ReferenceRepository
	Cache    CatalogCache
	CacheTTL time.Duration
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewReferenceService constructs the service. A nil cache or zero TTL disables caching.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		repo:    deps.Repo,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

func (s *ReferenceService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return cachedList(ctx, s, "departments", s.repo.ListDepartments)
}

func (s *ReferenceService) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	return cachedList(ctx, s, "programs", s.repo.ListPrograms)
}

func (s *ReferenceService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return cachedList(ctx, s, "courses", s.repo.ListCourses)
}

func (s *ReferenceService) ListBaskets(ctx context.Context) ([]domain.Basket, error) {
	return cachedList(ctx, s, "baskets", s.repo.ListBaskets)
}

// Catalog loads all four lists concurrently. Any failure fails the whole load.
func (s *ReferenceService) Catalog(ctx context.Context) (*domain.Catalog, error) {
	var catalog domain.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		catalog.Departments, err = s.ListDepartments(gctx)
		return err
	})
	g.Go(func() (err error) {
		catalog.Programs, err = s.ListPrograms(gctx)
		return err
	})
	g.Go(func() (err error) {
		catalog.Courses, err = s.ListCourses(gctx)
		return err
	})
	g.Go(func() (err error) {
		catalog.Baskets, err = s.ListBaskets(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// FilterPrograms returns programs whose name contains query, ignoring case.
// A blank query returns every program.
func (s *ReferenceService) FilterPrograms(ctx context.Context, query string) ([]domain.Program, error) {
	programs, err := s.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return programs, nil
	}

	// Casers are stateful; one per call.
	fold := cases.Fold()
	needle := fold.String(query)
	result := []domain.Program{}
	for _, p := range programs {
		if strings.Contains(fold.String(p.Name), needle) {
			result = append(result, p)
		}
	}
	return result, nil
}

// ResolveCourse maps an exact course name to its id. Unknown names resolve to "".
func (s *ReferenceService) ResolveCourse(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range courses {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return "", nil
}

func cachedList[T any](ctx context.Context, s *ReferenceService, list string, load func(context.Context) ([]T, error)) ([]T, error) {
	useCache := s.cache != nil && s.cache.Enabled() && s.ttl > 0
	key := catalogKeyPrefix + list

	if useCache {
		var cached []T
		found, err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			s.metrics.RecordCatalogCache(list, observability.CacheError)
			s.logger.Warn("catalog cache read failed", zap.String("list", list), zap.Error(err))
		case found:
			s.metrics.RecordCatalogCache(list, observability.CacheHit)
			return cached, nil
		default:
			s.metrics.RecordCatalogCache(list, observability.CacheMiss)
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err, false)
	}

	if useCache {
		if err := s.cache.SetJSON(ctx, key, items, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("list", list), zap.Error(err))
		}
	}
	return items, nil
}
