package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/auth"
	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// Locals keys set by JWTAuth.
const (
	UserIDLocalKey = "user_id"
	RoleLocalKey   = "role"
)

// JWTAuth validates bearer tokens and loads the current account state, so
// downstream handlers always see fresh active/verified flags rather than
// the ones frozen into the token at login.
func JWTAuth(svc *auth.Service, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := svc.AccessClaims(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)

		user, err := repo.FindByID(c.UserContext(), sub)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "account no longer exists")
		}

		c.Locals(UserIDLocalKey, user.ID)
		c.Locals(RoleLocalKey, user.Role)
		c.Locals(wallet.ActorLocalKey, user.Actor())
		return c.Next()
	}
}

// RequireAdmin rejects requests whose account does not hold an admin role.
// It must run after JWTAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(RoleLocalKey).(string)
		if role != identity.RoleAdmin && role != identity.RoleMasterAdmin {
			return fiber.NewError(http.StatusForbidden, "admin rights required")
		}
		return c.Next()
	}
}
