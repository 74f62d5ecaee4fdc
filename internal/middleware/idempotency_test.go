package middleware

import (
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mwangi-george/virtual-wallet-app/internal/logging"
)

func newIdempotencyApp(t *testing.T, hits *atomic.Int64) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/deposit", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"hit": hits.Load()})
	})
	app.Post("/withdraw", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"hit": hits.Load()})
	})
	return app, mr
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	var hits atomic.Int64
	app, _ := newIdempotencyApp(t, &hits)

	req := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key header, got %d", resp.StatusCode)
	}
	if hits.Load() != 0 {
		t.Fatalf("handler ran without an idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var hits atomic.Int64
	app, _ := newIdempotencyApp(t, &hits)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/deposit", nil)
		req.Header.Set(idempotencyKeyHeader, "retry-abc")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, resp.StatusCode)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected handler to run once, ran %d times", hits.Load())
	}
}

func TestIdempotencyKeyScopedPerRoute(t *testing.T) {
	var hits atomic.Int64
	app, _ := newIdempotencyApp(t, &hits)

	for _, path := range []string{"/deposit", "/withdraw"} {
		req := httptest.NewRequest(fiber.MethodPost, path, nil)
		req.Header.Set(idempotencyKeyHeader, "shared-key")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s failed: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("%s: expected 201, got %d", path, resp.StatusCode)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("expected both routes to execute, got %d hits", hits.Load())
	}
}

func TestIdempotencySkipsReads(t *testing.T) {
	var hits atomic.Int64
	app, _ := newIdempotencyApp(t, &hits)
	app.Get("/balance", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/balance", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected GET to bypass idempotency, got %d", resp.StatusCode)
	}
}
