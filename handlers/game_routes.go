// handlers/game_routes.go
package handlers

import (
	"errors"
	"log"

	"monad-moments/game"
	"monad-moments/middleware"
	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, rounds *services.RoundManager, sessions *services.SessionService) {
	secured := app.Group("/", middleware.SessionMiddleware(sessions))

	secured.Post("/game/rounds", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)

		var req struct {
			Level   int           `json:"level"`
			Friends []game.Friend `json:"friends"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.Level < 1 {
			req.Level = 1
		}

		id, snap := rounds.StartRound(fid, req.Level, req.Friends)
		log.Printf("🎮 Round %s started for fid=%d at level %d", id, fid, req.Level)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"round_id": id,
			"state":    snap,
		})
	})

	secured.Get("/game/rounds/:id", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		snap, err := rounds.Get(fid, c.Params("id"))
		if err != nil {
			return roundError(c, err)
		}
		return c.JSON(fiber.Map{"state": snap})
	})

	secured.Post("/game/rounds/:id/flip", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)

		var req struct {
			Index *int `json:"index"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.Index == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing index field",
			})
		}

		snap, err := rounds.Flip(fid, c.Params("id"), *req.Index)
		if err != nil {
			return roundError(c, err)
		}
		return c.JSON(fiber.Map{"state": snap})
	})

	secured.Post("/game/rounds/:id/abandon", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		if err := rounds.Abandon(fid, c.Params("id")); err != nil {
			return roundError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})

	secured.Get("/game/progress", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		progress, err := rounds.Progress(fid)
		if err != nil {
			log.Printf("❌ Error loading progress for fid=%d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.JSON(fiber.Map{"progress": progress})
	})

	secured.Get("/game/leaderboard", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		entries, err := rounds.Leaderboard(fid)
		if err != nil {
			log.Printf("❌ Error loading leaderboard for fid=%d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.JSON(fiber.Map{"leaderboard": entries})
	})
}

func roundError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRoundNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "round not found",
		})
	case errors.Is(err, services.ErrNotRoundOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden",
		})
	default:
		log.Printf("❌ Round error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
