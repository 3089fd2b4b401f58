package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeStorageError   = "storage_error"
)

// Catalog cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPErrorsTotal        *prometheus.CounterVec
	RegistrationsTotal     *prometheus.CounterVec
	OfferingsInsertedTotal prometheus.Counter
	RegistrationDuration   prometheus.Histogram
	CatalogCacheTotal      *prometheus.CounterVec
}

// NewMetrics registers all collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "offering_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"path", "method", "status"},
		),

		HTTPRequestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "offering_http_request_duration_seconds",
				Help:    "HTTP request duration by route and method",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"path", "method"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "offering_http_errors_total",
				Help: "HTTP error responses by route, method and error code",
			},
			[]string{"path", "method", "code"},
		),

		RegistrationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "offering_registrations_total",
				Help: "Offering registration attempts by outcome",
			},
			[]string{"outcome"}, // success, invalid_request, storage_error
		),

		OfferingsInsertedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "offering_rows_inserted_total",
				Help: "Course offering rows committed",
			},
		),

		RegistrationDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "offering_registration_duration_seconds",
				Help:    "Duration of the registration transaction",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),

		CatalogCacheTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "offering_catalog_cache_total",
				Help: "Catalog cache lookups by list and result",
			},
			[]string{"list", "result"}, // result: hit, miss, error
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordRegistration counts one registration attempt and the rows it committed.
func (m *Metrics) RecordRegistration(outcome string, inserted int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
	if inserted > 0 {
		m.OfferingsInsertedTotal.Add(float64(inserted))
	}
	m.RegistrationDuration.Observe(duration.Seconds())
}

// RecordCatalogCache counts a cache lookup for a reference list.
func (m *Metrics) RecordCatalogCache(list, result string) {
	if m == nil {
		return
	}
	m.CatalogCacheTotal.WithLabelValues(list, result).Inc()
}
