package rayid

import (
	"purchase-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the request id.
const HeaderName = "X-Ray-ID"

// New creates a middleware assigning every request a ray id. A valid id sent
// by the client is reused.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.NewString()
		if parsed, err := uuid.Parse(c.Get(HeaderName)); err == nil {
			id = parsed.String()
		}
		c.Locals(logger.RayIDKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
