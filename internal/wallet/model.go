package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger transaction.
type Kind string

const (
	KindDeposit  Kind = "Deposit"
	KindWithdraw Kind = "Withdraw"
	KindPurchase Kind = "Purchase"
	KindTransfer Kind = "Transfer"
	KindReceive  Kind = "Receive"
)

// Wallet is a per-user monetary balance with an append-only transaction history.
type Wallet struct {
	ID        string
	UserID    string
	Balance   decimal.Decimal
	Currency  string
	UpdatedAt time.Time
}

// Transaction is an immutable record of a single balance-affecting event.
// Amount is always a positive magnitude; direction is implied by Kind.
// Category is set only on Purchase and Transfer rows.
type Transaction struct {
	ID        string
	WalletID  string
	Kind      Kind
	Amount    decimal.Decimal
	Category  *string
	CreatedAt time.Time
}

// Actor is the authenticated caller on whose behalf a ledger operation runs.
type Actor struct {
	ID       string
	Active   bool
	Verified bool
}

// Receipt reports the outcome of a committed mutating operation.
type Receipt struct {
	AmountMoved   decimal.Decimal
	WalletBalance decimal.Decimal
}

// Balance is a point-in-time read of available funds.
type Balance struct {
	WalletID string
	Amount   decimal.Decimal
	Currency string
	AsOf     time.Time
}
