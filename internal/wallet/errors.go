package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-positive or fractionally malformed amount.
	ErrInvalidAmount = errors.New("amount must be a positive value with at most two decimal places")

	// ErrInsufficientFunds occurs when the wallet balance cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound indicates no wallet exists for the requested owner.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrRecipientNotFound indicates the transfer target user does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrRecipientInactive indicates the transfer target account is deactivated.
	ErrRecipientInactive = errors.New("recipient is no longer active")

	// ErrRecipientUnverified indicates the transfer target account is not verified.
	ErrRecipientUnverified = errors.New("recipient is not verified")

	// ErrActorInactive indicates the caller's account is deactivated.
	ErrActorInactive = errors.New("user is not active, access denied")

	// ErrActorUnverified indicates the caller's account is not verified.
	ErrActorUnverified = errors.New("user is not verified, access denied")

	// ErrLedgerUnavailable is returned for storage or transaction failures.
	// The unit of work has been rolled back; callers may retry after a
	// fresh read confirms whether the attempt committed.
	ErrLedgerUnavailable = errors.New("could not process request, please try again")
)

// InsufficientFundsError carries the current balance so callers can render
// a specific message. It unwraps to ErrInsufficientFunds for errors.Is checks.
type InsufficientFundsError struct {
	Balance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds to process request, current wallet balance: %s", e.Balance)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
