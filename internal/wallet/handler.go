package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes ledger HTTP endpoints. The JWT middleware is expected to
// have stored the authenticated Actor in the request locals.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ActorLocalKey is the fiber locals key under which the auth middleware
// stores the authenticated actor.
const ActorLocalKey = "actor"

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type purchaseRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

type transferRequest struct {
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"spending_category"`
}

// Deposit credits the caller's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Deposit(c.UserContext(), actor, req.Amount)
	if err != nil {
		return MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount_deposited": receipt.AmountMoved,
		"wallet_balance":   receipt.WalletBalance,
	})
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Withdraw(c.UserContext(), actor, req.Amount)
	if err != nil {
		return MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount_withdrawn": receipt.AmountMoved,
		"wallet_balance":   receipt.WalletBalance,
	})
}

// Purchase debits the caller's wallet against a spending category.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !validCategory(req.Category) {
		return fiber.NewError(http.StatusBadRequest, "category must be between 1 and 100 characters")
	}
	receipt, err := h.service.Purchase(c.UserContext(), actor, req.Amount, req.Category)
	if err != nil {
		return MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount_spent":   receipt.AmountMoved,
		"wallet_balance": receipt.WalletBalance,
	})
}

// Transfer moves funds to another user's wallet.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.RecipientID == "" {
		return fiber.NewError(http.StatusBadRequest, "recipient_id is required")
	}
	if !validCategory(req.Category) {
		return fiber.NewError(http.StatusBadRequest, "spending_category must be between 1 and 100 characters")
	}
	receipt, err := h.service.Transfer(c.UserContext(), actor, req.RecipientID, req.Amount, req.Category)
	if err != nil {
		return MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"amount_transferred": receipt.AmountMoved,
		"wallet_balance":     receipt.WalletBalance,
	})
}

// Balance returns the caller's wallet balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	balance, err := h.service.Balance(c.UserContext(), actor)
	if err != nil {
		return MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance":  balance.Amount,
		"currency": balance.Currency,
	})
}

// History lists the caller's transactions, filtered by optional query
// parameters: type, category, from, to (RFC 3339 dates), limit.
func (h *Handler) History(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}
	filter := TransactionFilter{
		Kind:     Kind(c.Query("type")),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit"),
	}
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "from must be an RFC 3339 timestamp")
		}
		filter.From = ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "to must be an RFC 3339 timestamp")
		}
		filter.To = ts
	}

	entries, err := h.service.History(c.UserContext(), actor, filter)
	if err != nil {
		return MapLedgerError(err)
	}
	out := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		row := fiber.Map{
			"id":         entry.ID,
			"type":       entry.Kind,
			"amount":     entry.Amount,
			"created_at": entry.CreatedAt,
		}
		if entry.Category != nil {
			row["category"] = *entry.Category
		}
		out = append(out, row)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

func actorFromCtx(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals(ActorLocalKey).(Actor)
	return actor, ok
}

func validCategory(category string) bool {
	return len(category) >= 1 && len(category) <= 100
}

// MapLedgerError converts ledger errors to transport responses. The ledger
// itself never depends on fiber types; this is the boundary mapping, shared
// by every handler that surfaces ledger errors.
func MapLedgerError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrActorInactive), errors.Is(err, ErrActorUnverified),
		errors.Is(err, ErrRecipientInactive), errors.Is(err, ErrRecipientUnverified):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, ErrRecipientNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLedgerUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
