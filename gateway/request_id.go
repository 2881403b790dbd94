package gateway

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID carries the correlation id. A caller-supplied value is
// kept and echoed back so the web app can trace its own calls through
// portal logs.
const HeaderRequestID = "X-Request-ID"

const localsRequestID = "request_id"

// RequestID tags every request with a correlation id.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localsRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestIDFromCtx reads the id assigned by RequestID; empty outside the
// middleware chain.
func RequestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}
