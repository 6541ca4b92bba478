// middleware/session.go
package middleware

import (
	"log"

	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
)

// SessionMiddleware resolves the session cookie into the caller's fid
// and attaches it to the request context. Requests without a valid
// session are rejected before any handler runs.
func SessionMiddleware(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(services.SessionCookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		fid, err := sessions.Verify(token)
		if err != nil {
			log.Printf("🚫 [SESSION] Invalid session token on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("fid", fid)
		return c.Next()
	}
}

// SessionFid reads the fid stored by SessionMiddleware.
func SessionFid(c *fiber.Ctx) int64 {
	fid, _ := c.Locals("fid").(int64)
	return fid
}
