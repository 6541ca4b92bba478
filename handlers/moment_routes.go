// handlers/moment_routes.go
package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"monad-moments/middleware"
	"monad-moments/models"
	"monad-moments/services"
	"monad-moments/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Fallback friend list until the host platform's social graph API is
// wired in. Callers can override via the friends query parameter.
var defaultFriendFids = []int64{54321, 65432, 76543}

func SetupMomentRoutes(app *fiber.App, moments *services.MomentService, sessions *services.SessionService) {
	secured := app.Group("/", middleware.SessionMiddleware(sessions))

	secured.Get("/moments", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(services.DefaultFeedLimit)))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		var (
			feed []models.MomentWithUser
			err  error
		)
		if specific := c.Query("fid"); specific != "" {
			targetFid, parseErr := strconv.ParseInt(specific, 10, 64)
			if parseErr != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid fid",
				})
			}
			feed, err = moments.GetUserMoments(targetFid, limit, offset)
		} else if c.Query("feedType", "friends") == "friends" {
			feed, err = moments.GetFriendMoments(fid, friendFids(c), limit, offset)
		} else {
			feed, err = moments.GlobalFeed(limit, offset)
		}
		if err != nil {
			log.Printf("❌ Error fetching moments feed for fid=%d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.JSON(fiber.Map{"moments": feed})
	})

	secured.Post("/moments", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)

		var req struct {
			MomentType      models.MomentType `json:"moment_type"`
			Title           string            `json:"title"`
			Description     string            `json:"description"`
			TransactionHash string            `json:"transaction_hash"`
			ContractAddress string            `json:"contract_address"`
			CustomMessage   string            `json:"custom_message"`
			ImageURL        string            `json:"image_url"`
			IsRare          bool              `json:"is_rare"`
			Metadata        models.Metadata   `json:"metadata"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.MomentType == "" || req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing required fields",
			})
		}

		metadata := req.Metadata
		if metadata == nil {
			metadata = models.Metadata{}
		}
		moment, err := moments.CreateMoment(services.MomentFields{
			FID:             fid,
			MomentType:      req.MomentType,
			Title:           req.Title,
			Description:     req.Description,
			TransactionHash: req.TransactionHash,
			ContractAddress: req.ContractAddress,
			CustomMessage:   req.CustomMessage,
			ImageURL:        req.ImageURL,
			IsRare:          req.IsRare,
			Metadata:        metadata,
		})
		if err != nil {
			log.Printf("❌ Error creating moment for fid=%d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"moment": moment})
	})

	secured.Get("/moments/:id", func(c *fiber.Ctx) error {
		momentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moment ID",
			})
		}
		moment, err := moments.GetMomentByID(uint(momentID))
		if err != nil {
			log.Printf("❌ Error fetching moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if moment == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "moment not found",
			})
		}
		return c.JSON(fiber.Map{"moment": moment})
	})

	secured.Patch("/moments/:id", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		momentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moment ID",
			})
		}

		moment, err := moments.GetMomentByID(uint(momentID))
		if err != nil {
			log.Printf("❌ Error fetching moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if moment == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "moment not found",
			})
		}
		if moment.FID != fid {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		var req struct {
			CustomMessage string `json:"custom_message"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.CustomMessage == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing custom_message field",
			})
		}

		updated, err := moments.UpdateCustomMessage(uint(momentID), req.CustomMessage)
		if err != nil {
			log.Printf("❌ Error updating moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.JSON(fiber.Map{"moment": updated})
	})

	secured.Post("/moments/:id/share", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		momentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moment ID",
			})
		}
		moment, err := moments.GetMomentByID(uint(momentID))
		if err != nil {
			log.Printf("❌ Error fetching moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if moment == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "moment not found",
			})
		}

		// Share analytics only; the host platform handles the cast itself.
		log.Printf("📣 Moment %d shared by user %d", momentID, fid)
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Moment shared successfully",
		})
	})

	secured.Post("/moments/:id/image", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)
		momentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid moment ID",
			})
		}

		moment, err := moments.GetMomentByID(uint(momentID))
		if err != nil {
			log.Printf("❌ Error fetching moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if moment == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "moment not found",
			})
		}
		if moment.FID != fid {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing image file",
			})
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		key := fmt.Sprintf("moments/%s-%s%s", slug.Make(moment.Title), uuid.NewString(), ext)
		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			log.Printf("❌ Error uploading image for moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		updated, err := moments.SetImageURL(uint(momentID), url)
		if err != nil {
			log.Printf("❌ Error saving image URL for moment %d: %v", momentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		return c.JSON(fiber.Map{"moment": updated})
	})
}

// friendFids parses the comma-separated friends query parameter,
// falling back to the stub list.
func friendFids(c *fiber.Ctx) []int64 {
	raw := c.Query("friends")
	if raw == "" {
		return defaultFriendFids
	}
	var fids []int64
	for _, part := range strings.Split(raw, ",") {
		fid, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		fids = append(fids, fid)
	}
	if len(fids) == 0 {
		return defaultFriendFids
	}
	return fids
}
