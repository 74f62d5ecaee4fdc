package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// RegisterWalletRoutes wires the ledger endpoints for the authenticated user.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Post("/deposit", h.Deposit)
	group.Post("/withdraw", h.Withdraw)
	group.Post("/purchase", h.Purchase)
	group.Post("/transfer", h.Transfer)
	group.Get("/balance", h.Balance)
	group.Get("/transactions", h.History)
}
