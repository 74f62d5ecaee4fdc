package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/auth"
)

// RegisterAuthRoutes wires signup, verification and token endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/signup", h.Signup)
	group.Get("/verify", h.Verify)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Post("/password-reset", h.RequestPasswordReset)
	group.Post("/password-update", h.UpdatePassword)
}
