package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header is the response (and accepted request) header carrying the RayID.
	Header = "X-Ray-ID"
	// LocalsKey is the fiber.Ctx locals key holding the RayID.
	LocalsKey = "ray_id"
)

// New returns a middleware that assigns a RayID to every request. An incoming
// X-Ray-ID header is reused so that callers can correlate their own logs.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
