package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
	"github.com/mwangi-george/virtual-wallet-app/internal/notification"
)

// Handler exposes signup, verification and login endpoints.
type Handler struct {
	ids      *identity.Service
	svc      *Service
	notifier notification.Notifier
}

// NewHandler builds an auth HTTP handler.
func NewHandler(ids *identity.Service, svc *Service, notifier notification.Notifier) *Handler {
	return &Handler{ids: ids, svc: svc, notifier: notifier}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers an account, provisions its wallet and sends the
// verification link.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Register(c.UserContext(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	token, err := h.svc.VerificationToken(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindAccountVerified,
			Destination: user.ID,
			Body:        fmt.Sprintf("Verify your account: /api/v1/auth/verify?token=%s", token),
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
	})
}

// Verify confirms the email verification token and activates ledger access.
func (h *Handler) Verify(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}
	userID, err := h.svc.ConfirmVerification(token)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.ids.MarkVerified(c.UserContext(), userID); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "verified"})
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// RequestPasswordReset sends a reset link for the given email. The response
// is the same whether or not the account exists, so the endpoint cannot be
// used to enumerate emails.
func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	var req resetRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email is required")
	}

	const reply = "if the account exists, a password reset link has been sent"
	user, err := h.ids.FindByEmail(c.UserContext(), req.Email)
	if err != nil {
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": reply})
	}
	token, err := h.svc.PasswordResetToken(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindPasswordReset,
			Destination: user.ID,
			Body:        fmt.Sprintf("Reset your password: /api/v1/auth/password-update?token=%s", token),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": reply})
}

type passwordUpdateRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdatePassword completes a password reset using the emailed token.
func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	var req passwordUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, err := h.svc.ConfirmPasswordReset(req.Token)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	if err := h.ids.ResetPassword(c.UserContext(), userID, req.NewPassword); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "password updated successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, expiresIn, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": expiresIn})
}
