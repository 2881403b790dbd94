package gateway

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LogSamplingConfig bounds request-log volume: fast successes are logged
// at most once per Tick, anything slower than After always logs.
type LogSamplingConfig struct {
	Tick  time.Duration
	After time.Duration
}

type sampleGate struct {
	cfg  LogSamplingConfig
	mu   sync.Mutex
	next time.Time
}

func (g *sampleGate) allow(took time.Duration) bool {
	if g.cfg.After > 0 && took >= g.cfg.After {
		return true
	}
	if g.cfg.Tick <= 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if g.next.IsZero() || now.After(g.next) {
		g.next = now.Add(g.cfg.Tick)
		return true
	}
	return false
}

// RequestLogger writes one structured line per request. Errors and 5xx
// responses always log; everything else goes through the sampling gate.
func RequestLogger(logger *logrus.Logger, cfg LogSamplingConfig) fiber.Handler {
	gate := &sampleGate{cfg: cfg}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		took := time.Since(start)

		status := c.Response().StatusCode()
		failed := err != nil || status >= fiber.StatusInternalServerError
		if !failed && !gate.allow(took) {
			return err
		}

		path := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			path = r.Path
		}
		fields := logrus.Fields{
			"request_id":  RequestIDFromCtx(c),
			"method":      c.Method(),
			"path":        path,
			"status":      status,
			"duration_ms": took.Milliseconds(),
			"bytes_in":    len(c.Body()),
			"bytes_out":   len(c.Response().Body()),
			"ip":          c.IP(),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			fields["user_agent"] = ua
		}
		if err != nil {
			fields["error"] = err.Error()
		}

		entry := logger.WithFields(fields)
		switch {
		case failed:
			entry.Error("http_request")
		case status >= fiber.StatusBadRequest:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
		return err
	}
}
