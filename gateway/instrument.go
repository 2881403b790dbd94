package gateway

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var instrumentOnce sync.Once

var (
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
)

func initInstrumentation() {
	instrumentOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "request",
			Name:      "requests_total",
			Help:      "Number of requests per each endpoint",
		}, []string{"code", "method", "path"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "response",
			Name:      "duration_seconds",
			Help:      "portal response duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpResponseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "response",
			Name:      "size_bytes",
			Help:      "portal response size",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		}, []string{"method", "path"})

		for _, coll := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpResponseSize} {
			if err := prometheus.Register(coll); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// Instrumentation records request counts, latency and response sizes for
// every route except /metrics itself.
func Instrumentation() fiber.Handler {
	initInstrumentation()
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		routePath := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			routePath = r.Path
		}
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(status, c.Method(), routePath).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), routePath).Observe(duration.Seconds())
		httpResponseSize.WithLabelValues(c.Method(), routePath).Observe(float64(len(c.Response().Body())))
		return err
	}
}

// PortalCors handles cross-origin headers for the configured origins. An
// empty list allows any origin.
func PortalCors(origins []string) fiber.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if len(allowed) == 0 {
			c.Set("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Vary", "Origin")
		}
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}
		c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Set("Access-Control-Allow-Headers", "authorization, origin, content-type, accept, X-CSRF-TOKEN")
		c.Set("Access-Control-Allow-Credentials", "true")
		return c.SendStatus(fiber.StatusOK)
	}
}
