package admin

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
)

// Handler exposes the admin panel endpoints. Routes mounting it must be
// guarded by the admin role middleware.
type Handler struct {
	service *Service
}

// NewHandler builds an admin HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type userResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
	Role     string `json:"role"`
}

func toResponse(u identity.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Verified: u.Verified, Active: u.Active, Role: u.Role}
}

// ListUsers returns a page of accounts.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext(), c.QueryInt("offset"), c.QueryInt("limit"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"users": out})
}

// FindUser fetches one account by email.
func (h *Handler) FindUser(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email is required")
	}
	user, err := h.service.FindUser(c.UserContext(), email)
	if err != nil {
		return mapAdminError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers a pre-verified account with the given role.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Role == "" {
		req.Role = identity.RoleUser
	}
	user, err := h.service.CreateUser(c.UserContext(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password}, req.Role)
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrEmailTaken):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownRole):
		return mapAdminError(err)
	default:
		// Registration rejects malformed input with plain errors.
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(user))
}

type statusRequest struct {
	Email     string `json:"email"`
	NewStatus bool   `json:"new_status"`
}

// SetStatus activates or deactivates an account.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.SetUserStatus(c.UserContext(), req.Email, req.NewStatus)
	if err != nil {
		return mapAdminError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

type roleRequest struct {
	Email   string `json:"email"`
	NewRole string `json:"new_role"`
}

// SetRole changes an account's role.
func (h *Handler) SetRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.SetUserRole(c.UserContext(), req.Email, req.NewRole)
	if err != nil {
		return mapAdminError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

// DeleteUser removes a non-admin account.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email is required")
	}
	if err := h.service.DeleteUser(c.UserContext(), email); err != nil {
		return mapAdminError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted", "email": email})
}

func mapAdminError(err error) error {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStatusUnchanged), errors.Is(err, ErrRoleUnchanged), errors.Is(err, ErrUnknownRole):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCannotDeleteAdmin):
		return fiber.NewError(http.StatusForbidden, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
