package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/analytics"
)

// RegisterAnalyticsRoutes wires the spending analytics endpoints.
func RegisterAnalyticsRoutes(r fiber.Router, h *analytics.Handler) {
	group := r.Group("/analytics")
	group.Get("/spending", h.SpendingSummary)
	group.Get("/statement", h.Statement)
}
