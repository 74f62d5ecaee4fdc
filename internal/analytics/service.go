package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// CategorySpend is the aggregated purchase total for one spending category.
type CategorySpend struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Service answers read-only spending questions over the wallet ledger. It
// consumes the ledger's query surface and never writes.
type Service struct {
	wallets *wallet.Service
}

// NewService builds an analytics service over the ledger query surface.
func NewService(wallets *wallet.Service) *Service {
	return &Service{wallets: wallets}
}

// SpendingSummary totals the actor's Purchase transactions per category
// within the date range, sorted by category.
func (s *Service) SpendingSummary(ctx context.Context, actor wallet.Actor, from, to time.Time) ([]CategorySpend, error) {
	entries, err := s.wallets.History(ctx, actor, wallet.TransactionFilter{
		Kind: wallet.KindPurchase,
		From: from,
		To:   to,
	})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		if entry.Category == nil {
			continue
		}
		totals[*entry.Category] = totals[*entry.Category].Add(entry.Amount)
	}

	out := make([]CategorySpend, 0, len(totals))
	for category, amount := range totals {
		out = append(out, CategorySpend{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// Transactions lists the actor's ledger entries within the date range,
// optionally narrowed by kind and category.
func (s *Service) Transactions(ctx context.Context, actor wallet.Actor, kind wallet.Kind, category string, from, to time.Time) ([]wallet.Transaction, error) {
	return s.wallets.History(ctx, actor, wallet.TransactionFilter{
		Kind:     kind,
		Category: category,
		From:     from,
		To:       to,
	})
}
