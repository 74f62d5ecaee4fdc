package wallet

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that overwrites a wallet balance when the
// service is backed by the in-memory store.
func SeedBalance(s Store, userID string, balance decimal.Decimal) {
	if mem, ok := s.(*MemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if id, ok := mem.byUser[userID]; ok {
			w := mem.wallets[id]
			w.Balance = balance
			mem.wallets[id] = w
		}
	}
}
