package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/admin"
)

// RegisterAdminRoutes wires the admin panel. Callers must mount the group
// behind the admin role middleware.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/users", h.ListUsers)
	r.Post("/user", h.CreateUser)
	r.Get("/user", h.FindUser)
	r.Patch("/user/status", h.SetStatus)
	r.Patch("/user/role", h.SetRole)
	r.Delete("/user", h.DeleteUser)
}
