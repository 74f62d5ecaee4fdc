package wallet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store for tests. Units of work hold the store
// mutex from Begin until Commit or Rollback, so concurrent operations
// serialize the same way row locks serialize them in Postgres.
type MemoryStore struct {
	mu      sync.Mutex
	wallets map[string]Wallet // wallet id -> wallet
	byUser  map[string]string // user id -> wallet id
	log     []Transaction
}

// NewMemoryStore builds an empty in-memory wallet store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets: make(map[string]Wallet),
		byUser:  make(map[string]string),
	}
}

// Begin opens a unit of work. The store is locked until the returned Tx
// finishes.
func (s *MemoryStore) Begin(_ context.Context) (Tx, error) {
	s.mu.Lock()
	return &memoryTx{
		store:   s,
		staged:  make(map[string]Wallet),
		entries: nil,
	}, nil
}

// CreateWallet registers a new wallet.
func (s *MemoryStore) CreateWallet(_ context.Context, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUser[w.UserID]; exists {
		return errors.New("wallet exists for user")
	}
	s.wallets[w.ID] = w
	s.byUser[w.UserID] = w.ID
	return nil
}

// WalletByUser returns the committed wallet state for a user.
func (s *MemoryStore) WalletByUser(_ context.Context, userID string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walletByUserLocked(userID)
}

// Transactions lists committed entries matching the filter, newest first.
func (s *MemoryStore) Transactions(_ context.Context, filter TransactionFilter) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Transaction
	for i := len(s.log) - 1; i >= 0; i-- {
		entry := s.log[i]
		if filter.WalletID != "" && entry.WalletID != filter.WalletID {
			continue
		}
		if filter.Kind != "" && entry.Kind != filter.Kind {
			continue
		}
		if filter.Category != "" && (entry.Category == nil || *entry.Category != filter.Category) {
			continue
		}
		if !filter.From.IsZero() && entry.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && entry.CreatedAt.After(filter.To) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) walletByUserLocked(userID string) (Wallet, error) {
	id, ok := s.byUser[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return s.wallets[id], nil
}

type memoryTx struct {
	store    *MemoryStore
	staged   map[string]Wallet
	entries  []Transaction
	finished bool
}

func (t *memoryTx) WalletForUpdate(_ context.Context, userID string) (Wallet, error) {
	w, err := t.store.walletByUserLocked(userID)
	if err != nil {
		return Wallet{}, err
	}
	if staged, ok := t.staged[w.ID]; ok {
		return staged, nil
	}
	return w, nil
}

func (t *memoryTx) WalletsForUpdate(ctx context.Context, userA, userB string) (Wallet, Wallet, error) {
	a, err := t.WalletForUpdate(ctx, userA)
	if err != nil {
		return Wallet{}, Wallet{}, err
	}
	b, err := t.WalletForUpdate(ctx, userB)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			err = ErrRecipientNotFound
		}
		return Wallet{}, Wallet{}, err
	}
	return a, b, nil
}

func (t *memoryTx) UpdateBalance(_ context.Context, walletID string, balance decimal.Decimal, at time.Time) error {
	w, ok := t.staged[walletID]
	if !ok {
		w, ok = t.store.wallets[walletID]
		if !ok {
			return ErrWalletNotFound
		}
	}
	w.Balance = balance
	w.UpdatedAt = at
	t.staged[walletID] = w
	return nil
}

func (t *memoryTx) InsertTransaction(_ context.Context, entry Transaction) error {
	t.entries = append(t.entries, entry)
	return nil
}

func (t *memoryTx) Commit(_ context.Context) error {
	if t.finished {
		return errors.New("tx already finished")
	}
	for id, w := range t.staged {
		t.store.wallets[id] = w
	}
	t.store.log = append(t.store.log, t.entries...)
	t.finished = true
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback(_ context.Context) error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.store.mu.Unlock()
	return nil
}
