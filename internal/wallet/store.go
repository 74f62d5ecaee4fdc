package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the durable home of wallets and their transaction logs. Mutations
// go through an explicit unit of work obtained from Begin; reads outside a
// unit of work see the latest committed state.
type Store interface {
	// Begin opens a unit of work. The returned Tx must be finished with
	// Commit or Rollback on every path.
	Begin(ctx context.Context) (Tx, error)

	// CreateWallet provisions a zero-balance wallet for a user.
	CreateWallet(ctx context.Context, w Wallet) error

	// WalletByUser returns the wallet owned by the given user.
	WalletByUser(ctx context.Context, userID string) (Wallet, error)

	// Transactions lists committed ledger entries matching the filter,
	// newest first.
	Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}

// Tx is a unit of work: a bounded sequence of reads and writes that commits
// or rolls back atomically. Rows fetched with the ForUpdate methods are
// locked until the unit of work finishes, serializing concurrent operations
// against the same wallet.
type Tx interface {
	// WalletForUpdate loads and locks the wallet owned by userID.
	WalletForUpdate(ctx context.Context, userID string) (Wallet, error)

	// WalletsForUpdate loads and locks both wallets in one step, acquiring
	// the locks in ascending wallet-id order so that two transfers crossing
	// the same pair in opposite directions cannot deadlock.
	WalletsForUpdate(ctx context.Context, userA, userB string) (a, b Wallet, err error)

	// UpdateBalance writes a new balance for a locked wallet row.
	UpdateBalance(ctx context.Context, walletID string, balance decimal.Decimal, at time.Time) error

	// InsertTransaction appends an immutable ledger entry.
	InsertTransaction(ctx context.Context, t Transaction) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionFilter narrows a history listing. Zero values mean "no filter".
type TransactionFilter struct {
	WalletID string
	Kind     Kind
	Category string
	From     time.Time
	To       time.Time
	Limit    int
}
