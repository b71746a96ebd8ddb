// Package metrics provides the Prometheus collectors for the service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scoring modes used as label values.
const (
	ModePost  = "post"
	ModeBatch = "batch"
)

// Cache lookup results used as label values.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Collector owns a private registry so several instances (tests, CLI) never
// collide on the global default registry.
type Collector struct {
	registry *prometheus.Registry

	scoresTotal       *prometheus.CounterVec
	disqualifiedTotal *prometheus.CounterVec
	finalScore        *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors under the given namespace.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	c.scoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_total",
			Help:      "Total number of scored posts",
		},
		[]string{"mode"},
	)
	c.disqualifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disqualified_total",
			Help:      "Total number of posts disqualified by the ER or like-rate rules",
		},
		[]string{"mode"},
	)
	c.finalScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of final scores",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 9), // 10 .. ~655k
		},
		[]string{"mode"},
	)
	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"},
	)
	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	c.registry.MustRegister(
		c.scoresTotal,
		c.disqualifiedTotal,
		c.finalScore,
		c.cacheLookups,
		c.httpRequestsTotal,
		c.httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveScore records one scored post.
func (c *Collector) ObserveScore(mode string, finalScore float64, disqualified bool) {
	c.scoresTotal.WithLabelValues(mode).Inc()
	c.finalScore.WithLabelValues(mode).Observe(finalScore)
	if disqualified {
		c.disqualifiedTotal.WithLabelValues(mode).Inc()
	}
}

// ObserveCacheLookup records a cache lookup outcome (hit, miss, error).
func (c *Collector) ObserveCacheLookup(result string) {
	c.cacheLookups.WithLabelValues(result).Inc()
}

// Middleware returns a fiber handler that records request count and latency.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()

		err := ctx.Next()

		route := ctx.Route().Path
		if route == "" {
			route = "unknown"
		}
		code := ctx.Response().StatusCode()
		if err != nil {
			// the app error handler has not run yet
			code = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
		}
		status := strconv.Itoa(code)

		c.httpRequestsTotal.WithLabelValues(ctx.Method(), route, status).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
