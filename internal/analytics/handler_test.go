package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

func newHandlerApp(t *testing.T, actor wallet.Actor) (*fiber.App, *wallet.Service) {
	t.Helper()

	dir := &stubDirectory{users: map[string]wallet.Actor{actor.ID: actor}}
	walletSvc := wallet.NewService(wallet.NewMemoryStore(), dir, nil, nil, "KES")
	if _, err := walletSvc.CreateForUser(context.Background(), actor.ID); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	handler := NewHandler(NewService(walletSvc))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(wallet.ActorLocalKey, actor)
		return c.Next()
	})
	app.Get("/analytics/spending", handler.SpendingSummary)
	app.Get("/analytics/statement", handler.Statement)
	return app, walletSvc
}

func TestStatementEndpointFiltersByType(t *testing.T) {
	actor := wallet.Actor{ID: "user-1", Active: true, Verified: true}
	app, walletSvc := newHandlerApp(t, actor)
	ctx := context.Background()

	if _, err := walletSvc.Deposit(ctx, actor, dec(t, "300.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := walletSvc.Purchase(ctx, actor, dec(t, "45.00"), "Groceries"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/analytics/statement?type=Purchase", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Transactions []struct {
			Type     string `json:"type"`
			Category string `json:"category"`
		} `json:"transactions"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Transactions) != 1 {
		t.Fatalf("expected only the purchase row, got %+v", body.Transactions)
	}
	if body.Transactions[0].Type != "Purchase" || body.Transactions[0].Category != "Groceries" {
		t.Fatalf("unexpected row: %+v", body.Transactions[0])
	}
}

func TestStatementRejectsMalformedDates(t *testing.T) {
	actor := wallet.Actor{ID: "user-1", Active: true, Verified: true}
	app, _ := newHandlerApp(t, actor)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/analytics/statement?from=yesterday", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", resp.StatusCode)
	}
}

func TestAnalyticsMapsStatusErrorsToForbidden(t *testing.T) {
	actor := wallet.Actor{ID: "user-1", Active: false, Verified: true}
	app, _ := newHandlerApp(t, actor)

	for _, path := range []string{"/analytics/spending", "/analytics/statement"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s failed: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("%s: expected 403 for inactive actor, got %d", path, resp.StatusCode)
		}
	}
}
