package handlers

import (
	"log"
	"strconv"

	"monad-moments/middleware"
	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, users *services.UserService, sessions *services.SessionService) {
	secured := app.Group("/", middleware.SessionMiddleware(sessions))

	secured.Get("/users/:fid", func(c *fiber.Ctx) error {
		viewerFid := middleware.SessionFid(c)
		targetFid, err := strconv.ParseInt(c.Params("fid"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid fid",
			})
		}

		user, err := users.GetByFid(targetFid)
		if err != nil {
			log.Printf("❌ Error fetching user fid=%d: %v", targetFid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}

		// Wallet address stays private to its owner.
		return c.JSON(user.Public(viewerFid))
	})

	secured.Put("/users/:fid", func(c *fiber.Ctx) error {
		viewerFid := middleware.SessionFid(c)
		targetFid, err := strconv.ParseInt(c.Params("fid"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid fid",
			})
		}
		if viewerFid != targetFid {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		var req struct {
			WalletAddress string `json:"wallet_address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.WalletAddress == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing wallet_address field",
			})
		}

		user, err := users.UpdateWallet(targetFid, req.WalletAddress)
		if err != nil {
			log.Printf("❌ Error updating wallet for fid=%d: %v", targetFid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.JSON(user.Public(viewerFid))
	})
}
