package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

type stubDirectory struct {
	users map[string]wallet.Actor
}

func (d *stubDirectory) ActorByID(_ context.Context, id string) (wallet.Actor, error) {
	actor, ok := d.users[id]
	if !ok {
		return wallet.Actor{}, errors.New("user not found")
	}
	return actor, nil
}

func setup(t *testing.T) (*Service, *wallet.Service, wallet.Actor) {
	t.Helper()
	dir := &stubDirectory{users: make(map[string]wallet.Actor)}
	walletSvc := wallet.NewService(wallet.NewMemoryStore(), dir, nil, nil, "KES")
	actor := wallet.Actor{ID: uuid.NewString(), Active: true, Verified: true}
	dir.users[actor.ID] = actor
	if _, err := walletSvc.CreateForUser(context.Background(), actor.ID); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return NewService(walletSvc), walletSvc, actor
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestSpendingSummaryGroupsByCategory(t *testing.T) {
	svc, wallets, actor := setup(t)
	ctx := context.Background()

	if _, err := wallets.Deposit(ctx, actor, dec(t, "1000.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	purchases := []struct {
		amount   string
		category string
	}{
		{"120.00", "Rent"},
		{"35.50", "Groceries"},
		{"14.50", "Groceries"},
		{"60.00", "Transport"},
	}
	for _, p := range purchases {
		if _, err := wallets.Purchase(ctx, actor, dec(t, p.amount), p.category); err != nil {
			t.Fatalf("purchase %s: %v", p.category, err)
		}
	}
	// Withdrawals must not show up in the spending summary.
	if _, err := wallets.Withdraw(ctx, actor, dec(t, "100.00")); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	now := time.Now()
	summary, err := svc.SpendingSummary(ctx, actor, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("spending summary: %v", err)
	}

	want := []CategorySpend{
		{Category: "Groceries", Amount: dec(t, "50.00")},
		{Category: "Rent", Amount: dec(t, "120.00")},
		{Category: "Transport", Amount: dec(t, "60.00")},
	}
	if len(summary) != len(want) {
		t.Fatalf("expected %d categories, got %d: %+v", len(want), len(summary), summary)
	}
	for i, w := range want {
		if summary[i].Category != w.Category || !summary[i].Amount.Equal(w.Amount) {
			t.Fatalf("category %d: expected %+v, got %+v", i, w, summary[i])
		}
	}
}

func TestSpendingSummaryRespectsDateRange(t *testing.T) {
	svc, wallets, actor := setup(t)
	ctx := context.Background()

	if _, err := wallets.Deposit(ctx, actor, dec(t, "100.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := wallets.Purchase(ctx, actor, dec(t, "40.00"), "Rent"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	past := time.Now().Add(-48 * time.Hour)
	summary, err := svc.SpendingSummary(ctx, actor, past, past.Add(time.Hour))
	if err != nil {
		t.Fatalf("spending summary: %v", err)
	}
	if len(summary) != 0 {
		t.Fatalf("expected empty summary outside range, got %+v", summary)
	}
}

func TestTransactionsFilter(t *testing.T) {
	svc, wallets, actor := setup(t)
	ctx := context.Background()

	if _, err := wallets.Deposit(ctx, actor, dec(t, "500.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := wallets.Purchase(ctx, actor, dec(t, "20.00"), "Rent"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	now := time.Now()
	deposits, err := svc.Transactions(ctx, actor, wallet.KindDeposit, "", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(deposits) != 1 || deposits[0].Kind != wallet.KindDeposit {
		t.Fatalf("expected one deposit, got %+v", deposits)
	}
}
