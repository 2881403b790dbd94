package cms

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var cmsMetricsOnce sync.Once

var (
	cmsRequestsTotal   *prometheus.CounterVec
	cmsRequestDuration *prometheus.HistogramVec
)

func registerCMSCountVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		logrus.Printf("prometheus counter register failed: %v", err)
	}
	return c
}

func registerCMSHistogramVec(c *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		logrus.Printf("prometheus histogram register failed: %v", err)
	}
	return c
}

func initCMSMetrics() {
	cmsMetricsOnce.Do(func() {
		cmsRequestsTotal = registerCMSCountVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "cms_client",
			Name:      "requests_total",
			Help:      "Total number of CMS GraphQL requests.",
		}, []string{"operation", "result"}))

		cmsRequestDuration = registerCMSHistogramVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "cms_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of CMS GraphQL requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}))
	})
}

func observeCMSRequest(operation, result string, duration time.Duration) {
	initCMSMetrics()
	cmsRequestsTotal.WithLabelValues(operation, result).Inc()
	cmsRequestDuration.WithLabelValues(operation, result).Observe(duration.Seconds())
}
