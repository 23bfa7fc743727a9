package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gamepoint",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gamepoint",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Travel-estimation metrics
	RouteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "routing",
		Name:      "fetches_total",
		Help:      "Total upstream route fetches by mode and outcome",
	}, []string{"mode", "status"})

	RouteFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gamepoint",
		Subsystem: "routing",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream route fetch latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"mode"})

	RateLimitWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gamepoint",
		Subsystem: "routing",
		Name:      "throttle_wait_seconds",
		Help:      "Time spent waiting on the outbound request throttle",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.3, 0.6, 1, 3},
	})

	EstimatesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "travel",
		Name:      "estimates_computed_total",
		Help:      "Total orchestrated travel results assembled",
	}, []string{"venue"})

	FallbackEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "travel",
		Name:      "fallback_estimates_total",
		Help:      "Total geometric fallback results served",
	}, []string{"venue"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total result cache hits",
	}, []string{"backend"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamepoint",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total result cache misses",
	}, []string{"backend"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gamepoint",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
