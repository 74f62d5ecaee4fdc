package analytics

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// Handler exposes analytics HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an analytics HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SpendingSummary aggregates purchases per category for a date range given
// by the from/to query parameters (YYYY-MM-DD, default last 30 days).
func (h *Handler) SpendingSummary(c *fiber.Ctx) error {
	actor, ok := c.Locals(wallet.ActorLocalKey).(wallet.Actor)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}

	from, to, err := dateRange(c)
	if err != nil {
		return err
	}

	summary, err := h.service.SpendingSummary(c.UserContext(), actor, from, to)
	if err != nil {
		return wallet.MapLedgerError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"summary": summary, "from": from, "to": to})
}

// Statement lists the actor's transactions for a date range, optionally
// narrowed by the type and category query parameters. Dates are YYYY-MM-DD
// with an inclusive end of day, defaulting to the last 30 days.
func (h *Handler) Statement(c *fiber.Ctx) error {
	actor, ok := c.Locals(wallet.ActorLocalKey).(wallet.Actor)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing authenticated user")
	}

	from, to, err := dateRange(c)
	if err != nil {
		return err
	}

	entries, err := h.service.Transactions(c.UserContext(), actor, wallet.Kind(c.Query("type")), c.Query("category"), from, to)
	if err != nil {
		return wallet.MapLedgerError(err)
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
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out, "from": from, "to": to})
}

// dateRange parses the from/to query parameters.
func dateRange(c *fiber.Ctx) (from, to time.Time, err error) {
	to = time.Now().UTC()
	from = to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.DateOnly, raw); err != nil {
			return from, to, fiber.NewError(http.StatusBadRequest, "from must be a YYYY-MM-DD date")
		}
	}
	if raw := c.Query("to"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return from, to, fiber.NewError(http.StatusBadRequest, "to must be a YYYY-MM-DD date")
		}
		// Inclusive end of day.
		to = day.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
