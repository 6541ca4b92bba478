// handlers/auth_routes.go
package handlers

import (
	"log"

	"monad-moments/middleware"
	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, users *services.UserService, sessions *services.SessionService) {
	// 🔓 Sign-in exchanges a host-platform profile for a session cookie.
	app.Post("/auth/signin", func(c *fiber.Ctx) error {
		var profile services.Profile
		if err := c.BodyParser(&profile); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if profile.FID <= 0 || profile.Username == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing fid or username",
			})
		}

		user, err := users.CreateOrUpdate(profile)
		if err != nil {
			log.Printf("❌ Error upserting user fid=%d: %v", profile.FID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		token, expires, err := sessions.Issue(user.FID)
		if err != nil {
			log.Printf("❌ Error issuing session for fid=%d: %v", user.FID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		c.Cookie(sessions.Cookie(token, expires))

		return c.JSON(fiber.Map{"user": user.Public(user.FID)})
	})

	app.Post("/auth/logout", func(c *fiber.Ctx) error {
		c.Cookie(sessions.ClearCookie())
		return c.JSON(fiber.Map{"success": true})
	})

	// 🔐 Session introspection requires a valid cookie.
	secured := app.Group("/", middleware.SessionMiddleware(sessions))

	secured.Get("/auth/session", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		user, err := users.GetByFid(fid)
		if err != nil {
			log.Printf("❌ Error loading session user fid=%d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"user": nil})
		}
		return c.JSON(fiber.Map{"user": user.Public(fid)})
	})
}
